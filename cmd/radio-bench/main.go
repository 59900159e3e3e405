// radio-bench: Run the radio firmware core on a real Si4702
//
// The tuner is reached either from a Raspberry Pi's own I2C bus and GPIOs
// (-bus rpi) or through an MCP2221A USB bridge (-bus mcp2221), with the
// button, LED and supply divider on the bridge's GP pins.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/herlein/pubradio/internal/cli"
	"github.com/herlein/pubradio/pkg/bridge"
	"github.com/herlein/pubradio/pkg/bus"
	"github.com/herlein/pubradio/pkg/controller"
	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/registers"
	"github.com/herlein/pubradio/pkg/tuner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// board is the hardware the controller is wired to
type board struct {
	bus    bus.Bus
	button hal.Button
	led    hal.LED
	meter  hal.Voltmeter
	close  func()
}

func main() {
	busType := flag.String("bus", "rpi", "Tuner connection: rpi or mcp2221")
	eepromFile := flag.String("eeprom", "etc/eeprom.bin", "EEPROM image file")
	optionsFile := flag.String("options", "", "Controller options JSON file")
	wake := flag.Bool("wake", false, "Classify presses with the pin-change wake path instead of the tick loop")
	debug := flag.Bool("v", false, "Verbose output (debug logging)")
	quiet := flag.Bool("q", false, "Only log errors")

	// Raspberry Pi
	i2cName := flag.String("i2c", "", "I2C bus name for -bus rpi (default: first bus)")
	buttonPin := flag.String("button", "GPIO17", "Button GPIO for -bus rpi")
	ledPin := flag.String("led", "GPIO18", "LED GPIO for -bus rpi")
	resetPin := flag.String("reset", "", "Tuner reset GPIO for -bus rpi, pulsed before power-up (e.g., GPIO23)")
	volts := flag.Float64("volts", 3.0, "Supply voltage reported when no ADC is wired")

	// MCP2221A
	deviceSel := flag.String("d", "", bridge.DeviceFlagUsage())
	gpButton := flag.Int("gp-button", 0, "Bridge GP pin for the button")
	gpLED := flag.Int("gp-led", 3, "Bridge GP pin for the LED")
	gpADC := flag.Int("gp-adc", -1, "Bridge GP pin sampling the supply (1-3, -1 for none)")
	divider := flag.Float64("divider", 2.0, "Supply divider ratio on the ADC pin")
	flag.Parse()

	ctx := app.Context()
	logger := cli.NewLogger(*debug, *quiet)

	opts := controller.DefaultOptions()
	if *optionsFile != "" {
		var err error
		if opts, err = controller.LoadOptions(*optionsFile); err != nil {
			cli.Fatalf("%v", err)
		}
	}

	var (
		b   *board
		err error
	)
	switch *busType {
	case "rpi":
		b, err = openPi(*i2cName, *buttonPin, *ledPin, *resetPin, *volts)
	case "mcp2221":
		b, err = openBridge(*deviceSel, *gpButton, *gpLED, *gpADC, *divider, logger)
	default:
		err = fmt.Errorf("unknown bus type %q (want rpi or mcp2221)", *busType)
	}
	if err != nil {
		cli.Fatalf("%v", err)
	}
	defer b.close()

	store, err := cli.OpenStore(*eepromFile)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	seq := tuner.New(registers.NewShadow(b.bus))
	ctrl, err := controller.New(opts, seq, store, b.led, logger)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	gate, err := ctrl.Boot(ctx, controller.Board{Voltmeter: b.meter})
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatalf("Boot failed: %v", err)
	}
	if gate != controller.GateRun {
		logger.Info("Boot stopped before the core started", log.Stringer("gate", gate))
		return
	}
	logger.Info("Radio running",
		log.Uint16("channel", ctrl.CurrentChannel()),
		log.Hex("device_id", seq.Registers().Get(registers.DEVICEID)))

	if *wake {
		err = runWake(ctx, ctrl, b.button, logger)
	} else {
		err = ctrl.Run(ctx, b.button)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Controller stopped", log.Err(err))
	}

	if err := seq.PowerDown(); err != nil {
		logger.Error("Power down failed", log.Err(err))
	}
}

// runWake waits for the button to go down and hands each press to the wake
// path classifier, as the pin-change interrupt would
func runWake(ctx context.Context, ctrl *controller.Controller, btn hal.Button, logger *log.Logger) error {
	poll := time.NewTicker(ctrl.Options().WakePoll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
		}
		if btn.Level() {
			continue
		}

		kind, err := ctrl.Wake(ctx, btn)
		if err != nil {
			return err
		}
		logger.Info("Wake press", log.Stringer("kind", kind), log.Uint16("channel", ctrl.CurrentChannel()))
	}
}

func openPi(i2cName, buttonPin, ledPin, resetPin string, volts float64) (*board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize peripherals: %w", err)
	}

	if resetPin != "" {
		if err := hal.ResetChip(resetPin); err != nil {
			return nil, err
		}
	}

	i2cBus, err := i2creg.Open(i2cName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	button, err := hal.OpenButton(buttonPin)
	if err != nil {
		i2cBus.Close()
		return nil, err
	}
	indicator, err := hal.OpenLED(ledPin)
	if err != nil {
		i2cBus.Close()
		return nil, err
	}

	return &board{
		bus:    bus.NewPeriph(i2cBus, registers.Address),
		button: button,
		led:    indicator,
		meter:  hal.FixedVoltage(volts),
		close: func() {
			_ = indicator.SetDuty(0)
			i2cBus.Close()
		},
	}, nil
}

func openBridge(selector string, gpButton, gpLED, gpADC int, divider float64, logger *log.Logger) (*board, error) {
	usb := gousb.NewContext()

	dev, err := bridge.SelectDevice(usb, bridge.DeviceSelector(selector))
	if err != nil {
		usb.Close()
		return nil, err
	}
	logger.Info("Connected to bridge", log.Stringer("device", dev))

	fail := func(err error) (*board, error) {
		dev.Close()
		usb.Close()
		return nil, err
	}

	if err := dev.SetI2CSpeed(bridge.DefaultI2CSpeed); err != nil {
		return fail(fmt.Errorf("failed to set I2C speed: %w", err))
	}
	button, err := dev.OpenButton(gpButton)
	if err != nil {
		return fail(err)
	}
	indicator, err := dev.OpenLED(gpLED)
	if err != nil {
		return fail(err)
	}

	var meter hal.Voltmeter
	if gpADC >= 0 {
		vm, err := dev.OpenVoltmeter(gpADC, bridge.VRef2V048)
		if err != nil {
			return fail(err)
		}
		vm.Scale = divider
		meter = vm
	}

	return &board{
		bus:    dev.I2C(registers.Address),
		button: button,
		led:    indicator,
		meter:  meter,
		close: func() {
			_ = indicator.SetDuty(0)
			dev.Close()
			usb.Close()
		},
	}, nil
}
