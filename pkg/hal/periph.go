package hal

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// PWMFrequency is the LED PWM carrier
const PWMFrequency = physic.KiloHertz

// ResetPulse is how long ResetChip holds the reset line low, and then waits
// after releasing it
const ResetPulse = 100 * time.Millisecond

// PinButton reads the button from a GPIO with the internal pull-up enabled
type PinButton struct {
	pin gpio.PinIO
}

// OpenButton configures the named GPIO as a pulled-up input
func OpenButton(name string) (*PinButton, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to find button pin %s", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button pin %s: %w", name, err)
	}
	return &PinButton{pin: pin}, nil
}

func (b *PinButton) Level() bool {
	return b.pin.Read() == gpio.High
}

// PinLED drives the LED from a GPIO, with PWM when the pin supports it and
// plain on/off otherwise.
type PinLED struct {
	pin     gpio.PinIO
	digital bool
}

// OpenLED looks up the named GPIO and turns the LED off
func OpenLED(name string) (*PinLED, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to find LED pin %s", name)
	}
	l := &PinLED{pin: pin}
	if err := l.SetDuty(0); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PinLED) SetDuty(duty uint8) error {
	if !l.digital {
		d := gpio.Duty(int64(gpio.DutyMax) * int64(duty) / 0xFF)
		if err := l.pin.PWM(d, PWMFrequency); err == nil {
			return nil
		}
		l.digital = true
	}

	level := gpio.Low
	if duty >= 0x80 {
		level = gpio.High
	}
	if err := l.pin.Out(level); err != nil {
		return fmt.Errorf("failed to drive LED pin %s: %w", l.pin.Name(), err)
	}
	return nil
}

// ResetChip pulses the named active-low reset line of the tuner
func ResetChip(name string) error {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return fmt.Errorf("failed to find reset pin %s", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to drive reset pin %s: %w", name, err)
	}
	time.Sleep(ResetPulse)
	if err := pin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to release reset pin %s: %w", name, err)
	}
	time.Sleep(ResetPulse)
	return nil
}
