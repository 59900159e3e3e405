// radio-sim: Run the radio firmware core against a simulated tuner
//
// The simulator wires the controller to an in-memory Si4702, a simulated
// button and an EEPROM image (in memory, or a file with -eeprom). It either
// replays a Lua script tick by tick or runs in real time with the keyboard
// standing in for the button.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/herlein/pubradio/internal/cli"
	"github.com/herlein/pubradio/pkg/config"
	"github.com/herlein/pubradio/pkg/controller"
	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/registers"
	"github.com/herlein/pubradio/pkg/script"
	"github.com/herlein/pubradio/pkg/sim"
	"github.com/herlein/pubradio/pkg/tuner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	eepromFile := flag.String("eeprom", "", "EEPROM image file (default: erased in-memory image)")
	scriptFile := flag.String("script", "", "Lua script to replay instead of running interactively")
	optionsFile := flag.String("options", "", "Controller options JSON file")
	volts := flag.Float64("volts", 3.0, "Simulated supply voltage")
	program := flag.String("program", "", "Channel sent by a simulated factory programmer")
	fast := flag.Bool("fast", false, "Skip tuner settle delays")
	debug := flag.Bool("v", false, "Verbose output (debug logging)")
	quiet := flag.Bool("q", false, "Only log errors")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	ctx := app.Context()
	logger := cli.NewLogger(*debug, *quiet)

	opts := controller.DefaultOptions()
	if *optionsFile != "" {
		var err error
		if opts, err = controller.LoadOptions(*optionsFile); err != nil {
			cli.Fatalf("%v", err)
		}
	}

	store, err := cli.OpenStore(*eepromFile)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	chip := sim.NewChip()
	seq := tuner.New(registers.NewShadow(chip))
	if *fast || *scriptFile != "" {
		seq.Delay = func(time.Duration) {}
	}

	indicator := &sim.LED{}
	ctrl, err := controller.New(opts, seq, store, indicator, logger)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	board := controller.Board{Voltmeter: hal.FixedVoltage(*volts)}
	if *program != "" {
		channel, err := strconv.ParseUint(*program, 0, 16)
		if err != nil {
			cli.Fatalf("Invalid programmer channel %q: %v", *program, err)
		}
		board.Programmer = sim.NewProgrammer([]byte{byte(channel >> 8), byte(channel)})
	}

	gate, err := ctrl.Boot(ctx, board)
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatalf("Boot failed: %v", err)
	}
	if gate != controller.GateRun {
		logger.Info("Boot stopped before the core started", log.Stringer("gate", gate))
		printStored(store)
		return
	}

	if *scriptFile != "" {
		runner := script.New(ctrl, indicator, logger)
		if err := runner.RunFile(ctx, *scriptFile); err != nil {
			cli.Fatalf("%v", err)
		}
		fmt.Printf("Script finished after %d ticks\n", runner.Steps())
		printStatus(ctrl.Status())
		printStored(store)
		return
	}

	if err := interactive(ctx, ctrl, indicator, logger); err != nil {
		cli.Fatalf("%v", err)
	}
	printStored(store)
}

// interactive runs the controller in real time, reading keys from a raw
// terminal until q or Ctrl-C
func interactive(ctx context.Context, ctrl *controller.Controller, indicator *sim.LED, logger *log.Logger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("interactive mode needs a terminal; use -script")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	btn := &sim.Button{}
	keys := make(chan byte)
	go readKeys(keys)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx, btn) }()

	fmt.Print("space: toggle button  s: short  l: long  v: very long  +/-: tune  q: quit\r\n")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Print("\r\n")
			return ignoreCancel(<-done)

		case key, ok := <-keys:
			if !ok {
				keys = nil
				cancel()
				continue
			}
			if key == 'q' || key == 0x03 {
				cancel()
				continue
			}
			handleKey(ctx, ctrl, btn, key, logger)

		case <-ticker.C:
			s := ctrl.Status()
			fmt.Printf("\rmode %-16s display %-16s channel %3d  led %3d  ticks %5d ",
				s.Mode, s.Display, s.Channel, indicator.Duty(), s.Ticks)
		}
	}
}

func handleKey(ctx context.Context, ctrl *controller.Controller, btn *sim.Button, key byte, logger *log.Logger) {
	hold := func(d time.Duration) {
		btn.Press()
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
			btn.Release()
		}()
	}

	period := ctrl.Options().TickPeriod
	switch key {
	case ' ':
		btn.Toggle()
	case 's':
		hold(30 * period)
	case 'l':
		hold(250 * period)
	case 'v':
		hold(450 * period)
	case '+', '=':
		tune(ctrl, ctrl.CurrentChannel()+1, logger)
	case '-':
		tune(ctrl, ctrl.CurrentChannel()-1, logger)
	}
}

func tune(ctrl *controller.Controller, channel uint16, logger *log.Logger) {
	if err := ctrl.Tune(channel); err != nil {
		logger.Error("Tune failed", log.Uint16("channel", channel), log.Err(err))
	}
}

func readKeys(keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			keys <- buf[0]
		}
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printStatus(s controller.Status) {
	fmt.Printf("  Mode:         %s\n", s.Mode)
	fmt.Printf("  Display:      %s\n", s.Display)
	fmt.Printf("  Channel:      %d\n", s.Channel)
	fmt.Printf("  Ticks:        %d\n", s.Ticks)
	fmt.Printf("  Last release: %d\n", s.LastRelease)
}

func printStored(store *config.Store) {
	record, err := store.Working()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read working record: %v\n", err)
		return
	}
	fmt.Printf("Stored: %s\n", record)
}
