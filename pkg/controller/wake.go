package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/led"
	"github.com/retroenv/retrogolib/log"
)

// PressKind is the classification of a press on the wake path
type PressKind int

const (
	PressNone  PressKind = iota // edge was a bounce or a release
	PressShort                  // released before the long press time
	PressLong                   // held through the long press time
)

func (k PressKind) String() string {
	switch k {
	case PressNone:
		return "none"
	case PressShort:
		return "short"
	case PressLong:
		return "long"
	default:
		return fmt.Sprintf("PressKind(%d)", int(k))
	}
}

// Wake handles one button edge while the periodic timer is stopped. After
// debouncing, a short press tunes one channel up and a long press saves the
// current channel with a flash of the LED. It returns once the button has
// been released and debounced again, or when ctx is done.
func (c *Controller) Wake(ctx context.Context, btn hal.Button) (PressKind, error) {
	if err := sleep(ctx, c.opts.Debounce); err != nil {
		return PressNone, err
	}
	if btn.Level() {
		return PressNone, nil
	}

	channel := c.CurrentChannel()

	released, err := c.waitRelease(ctx, btn, c.opts.LongPress)
	if err != nil {
		return PressNone, err
	}

	kind := PressLong
	if released {
		kind = PressShort
		c.mu.Lock()
		if err := c.tuner.TuneDirect(channel + 1); err != nil {
			c.logger.Error("Tuning failed", log.Uint16("channel", channel+1), log.Err(err))
		}
		c.mu.Unlock()
	} else {
		c.setLED(led.MaxDuty)
		c.mu.Lock()
		if err := c.store.SaveChannel(channel); err != nil {
			c.logger.Error("Saving channel failed", log.Uint16("channel", channel), log.Err(err))
		}
		c.mu.Unlock()
		err := sleep(ctx, c.opts.SaveFlash)
		c.setLED(0)
		if err != nil {
			return kind, err
		}
	}
	c.logger.Debug("Wake press", log.Stringer("kind", kind), log.Uint16("channel", channel))

	if _, err := c.waitRelease(ctx, btn, 0); err != nil {
		return kind, err
	}
	return kind, sleep(ctx, c.opts.Debounce)
}

// waitRelease polls btn until it is released, limit passes or ctx is done.
// A zero limit waits indefinitely.
func (c *Controller) waitRelease(ctx context.Context, btn hal.Button, limit time.Duration) (bool, error) {
	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	poll := time.NewTicker(c.opts.WakePoll)
	defer poll.Stop()

	for {
		if btn.Level() {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline:
			return false, nil
		case <-poll.C:
		}
	}
}

func (c *Controller) setLED(duty uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.led.SetDuty(duty); err != nil {
		c.logger.Error("Driving LED failed", log.Err(err))
		return
	}
	c.duty = int(duty)
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
