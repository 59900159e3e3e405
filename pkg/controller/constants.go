package controller

import "time"

// Timing of the foreground loop and button handling
const (
	// DefaultTickPeriod is the periodic interrupt cadence
	DefaultTickPeriod = 10 * time.Millisecond

	// DefaultIdleTimeout is the number of ticks without a release after
	// which any pending mode is abandoned (10 s)
	DefaultIdleTimeout uint16 = 1000
)

// Wake path timing
const (
	// DefaultDebounce is waited out after each button edge
	DefaultDebounce = 50 * time.Millisecond

	// DefaultLongPress is how long the button must stay down to save
	DefaultLongPress = 2000 * time.Millisecond

	// DefaultSaveFlash is how long the LED confirms a save
	DefaultSaveFlash = 200 * time.Millisecond

	// DefaultWakePoll is the button sampling interval while classifying
	DefaultWakePoll = time.Millisecond
)

// Boot gate parameters
const (
	// DefaultLowBatteryVolts is the supply level at or below which the
	// radio refuses to start
	DefaultLowBatteryVolts = 2.1

	// DefaultStartupFlash lights the LED once at power-on
	DefaultStartupFlash = 100 * time.Millisecond

	// Low battery blink, 10% duty at 1 Hz
	DefaultLowBatteryOn  = 100 * time.Millisecond
	DefaultLowBatteryOff = 900 * time.Millisecond

	// DefaultProgrammedBlink is both halves of the fast blink after programming
	DefaultProgrammedBlink = 50 * time.Millisecond
)
