package controller

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/herlein/pubradio/pkg/button"
)

// Options holds the controller timing and boot parameters
type Options struct {
	TickPeriod  time.Duration  `json:"tick_period"`
	IdleTimeout uint16         `json:"idle_timeout_ticks"`
	Table       []button.Entry `json:"table"`

	Debounce  time.Duration `json:"debounce"`
	LongPress time.Duration `json:"long_press"`
	SaveFlash time.Duration `json:"save_flash"`
	WakePoll  time.Duration `json:"wake_poll"`

	LowBatteryVolts float64       `json:"low_battery_volts"`
	StartupFlash    time.Duration `json:"startup_flash"`
	LowBatteryOn    time.Duration `json:"low_battery_on"`
	LowBatteryOff   time.Duration `json:"low_battery_off"`
	ProgrammedBlink time.Duration `json:"programmed_blink"`
}

// DefaultOptions returns the firmware's timing
func DefaultOptions() *Options {
	return &Options{
		TickPeriod:      DefaultTickPeriod,
		IdleTimeout:     DefaultIdleTimeout,
		Table:           button.DefaultTable(),
		Debounce:        DefaultDebounce,
		LongPress:       DefaultLongPress,
		SaveFlash:       DefaultSaveFlash,
		WakePoll:        DefaultWakePoll,
		LowBatteryVolts: DefaultLowBatteryVolts,
		StartupFlash:    DefaultStartupFlash,
		LowBatteryOn:    DefaultLowBatteryOn,
		LowBatteryOff:   DefaultLowBatteryOff,
		ProgrammedBlink: DefaultProgrammedBlink,
	}
}

// Validate checks the options for errors. The dispatch table is checked
// when the controller builds its button engine.
func (o *Options) Validate() error {
	if o.TickPeriod <= 0 {
		return ErrInvalidTickPeriod
	}
	if o.IdleTimeout == 0 {
		return ErrInvalidTimeout
	}
	if o.WakePoll <= 0 {
		return fmt.Errorf("%w: wake poll %s", ErrInvalidDuration, o.WakePoll)
	}

	durations := map[string]time.Duration{
		"debounce":         o.Debounce,
		"long press":       o.LongPress,
		"save flash":       o.SaveFlash,
		"startup flash":    o.StartupFlash,
		"low battery on":   o.LowBatteryOn,
		"low battery off":  o.LowBatteryOff,
		"programmed blink": o.ProgrammedBlink,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s %s", ErrInvalidDuration, name, d)
		}
	}
	return nil
}

// LoadOptions reads options from a JSON file. Fields missing from the file
// keep their defaults.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	opts := DefaultOptions()
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options in %s: %w", path, err)
	}
	return opts, nil
}

// SaveOptions writes options to a JSON file
func SaveOptions(opts *Options, path string) error {
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write options file: %w", err)
	}
	return nil
}
