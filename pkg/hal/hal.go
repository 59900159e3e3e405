// Package hal defines the board collaborators the radio core drives besides
// the tuner chip, and periph.io backed implementations of them.
package hal

import "context"

// Button is the push button input. Level is true while the pin reads high,
// which for the active-low button means released.
type Button interface {
	Level() bool
}

// LED is the PWM driven status LED
type LED interface {
	SetDuty(duty uint8) error
}

// Voltmeter samples the supply voltage
type Voltmeter interface {
	SampleVoltage() (float64, error)
}

// Programmer is the factory programming link. ReceiveByte blocks until a
// byte arrives, the link times out, or ctx is done.
type Programmer interface {
	Present() bool
	ReceiveByte(ctx context.Context) (byte, error)
}

// FixedVoltage is a Voltmeter for boards without supply sensing
type FixedVoltage float64

func (v FixedVoltage) SampleVoltage() (float64, error) {
	return float64(v), nil
}
