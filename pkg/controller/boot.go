package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/led"
	"github.com/retroenv/retrogolib/log"
)

// Gate is the outcome of the boot checks
type Gate int

const (
	GateRun        Gate = iota // controller initialized, ready for Run
	GateLowBattery             // supply too low, the core was never started
	GateProgrammed             // channel received from a programmer and saved
)

func (g Gate) String() string {
	switch g {
	case GateRun:
		return "run"
	case GateLowBattery:
		return "low-battery"
	case GateProgrammed:
		return "programmed"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// Board holds the collaborators consulted before the core starts. A nil
// Voltmeter skips the battery check, a nil Programmer the programming check.
type Board struct {
	Voltmeter  hal.Voltmeter
	Programmer hal.Programmer
}

// Boot flashes the LED and runs the power-on gates. With a low supply it
// blinks the LED slowly until ctx is done. With a programmer attached it
// saves the two byte channel it sends and blinks fast until ctx is done.
// Otherwise it calls Init and returns GateRun. The low battery and
// programmed gates only return once ctx is done.
func (c *Controller) Boot(ctx context.Context, board Board) (Gate, error) {
	c.setLED(led.MaxDuty)
	err := sleep(ctx, c.opts.StartupFlash)
	c.setLED(0)
	if err != nil {
		return GateRun, err
	}

	if board.Voltmeter != nil && c.lowBattery(board.Voltmeter) {
		return GateLowBattery, c.blink(ctx, c.opts.LowBatteryOn, c.opts.LowBatteryOff)
	}

	if board.Programmer != nil && board.Programmer.Present() {
		if err := c.program(ctx, board.Programmer); err != nil {
			return GateProgrammed, err
		}
		return GateProgrammed, c.blink(ctx, c.opts.ProgrammedBlink, c.opts.ProgrammedBlink)
	}

	if err := c.Init(); err != nil {
		c.logger.Warn("Starting with degraded configuration", log.Err(err))
	}
	return GateRun, nil
}

func (c *Controller) lowBattery(meter hal.Voltmeter) bool {
	volts, err := meter.SampleVoltage()
	if err != nil {
		c.logger.Error("Sampling supply voltage failed", log.Err(err))
		return false
	}
	if volts > c.opts.LowBatteryVolts {
		return false
	}
	c.logger.Warn("Low battery",
		log.String("volts", fmt.Sprintf("%.2f", volts)),
		log.String("threshold", fmt.Sprintf("%.2f", c.opts.LowBatteryVolts)))
	return true
}

// program receives a channel, most significant byte first, and saves it.
// A byte that times out restarts the exchange.
func (c *Controller) program(ctx context.Context, link hal.Programmer) error {
	for {
		hi, err := link.ReceiveByte(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}
		lo, err := link.ReceiveByte(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}

		channel := uint16(hi)<<8 | uint16(lo)
		c.mu.Lock()
		err = c.store.SaveChannel(channel)
		c.mu.Unlock()
		if err != nil {
			c.logger.Error("Saving programmed channel failed", log.Uint16("channel", channel), log.Err(err))
			return err
		}
		c.logger.Info("Channel programmed", log.Uint16("channel", channel))
		return nil
	}
}

// blink toggles the LED until ctx is done. Cancellation is the normal end
// and is not reported.
func (c *Controller) blink(ctx context.Context, on, off time.Duration) error {
	for {
		c.setLED(led.MaxDuty)
		err := sleep(ctx, on)
		if err == nil {
			c.setLED(0)
			err = sleep(ctx, off)
		}
		if err != nil {
			c.setLED(0)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
