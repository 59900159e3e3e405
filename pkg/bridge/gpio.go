package bridge

import "fmt"

func checkPin(pin int) error {
	if pin < 0 || pin >= PinCount {
		return fmt.Errorf("%w: GP%d", ErrInvalidPin, pin)
	}
	return nil
}

// designate sets the runtime mode and direction of one GP pin, leaving the
// other three as they are
func (d *Device) designate(pin int, mode, dir byte) error {
	current, err := d.command(newReport(CmdSRAMGet))
	if err != nil {
		return err
	}

	report := newReport(CmdSRAMSet)
	report[sramAlterGP] = alterValue
	copy(report[sramGPOffset:sramGPOffset+PinCount], current[sramGetGPOffset:sramGetGPOffset+PinCount])
	report[sramGPOffset+pin] = dir<<3 | mode
	_, err = d.command(report)
	return err
}

// ConfigureGPIO designates pin as a GPIO, as an input when input is set
func (d *Device) ConfigureGPIO(pin int, input bool) error {
	if err := checkPin(pin); err != nil {
		return err
	}
	dir := byte(dirOutput)
	if input {
		dir = dirInput
	}
	return d.designate(pin, gpModeGPIO, dir)
}

// SetGPIO drives an output pin high or low
func (d *Device) SetGPIO(pin int, high bool) error {
	if err := checkPin(pin); err != nil {
		return err
	}
	report := newReport(CmdGPIOSet)
	i := 2 + 4*pin
	report[i] = alterValue
	if high {
		report[i+1] = 1
	}
	report[i+2] = alterValue
	report[i+3] = dirOutput
	_, err := d.command(report)
	return err
}

// GPIO reads the level of a pin
func (d *Device) GPIO(pin int) (bool, error) {
	if err := checkPin(pin); err != nil {
		return false, err
	}
	rsp, err := d.command(newReport(CmdGPIOGet))
	if err != nil {
		return false, err
	}
	value := rsp[2+2*pin]
	if value == gpioNotGPIO {
		return false, fmt.Errorf("%w: GP%d", ErrNotGPIO, pin)
	}
	return value != 0, nil
}

// Button is an active-low button on a GP input
type Button struct {
	dev *Device
	pin int
}

// OpenButton designates pin as an input and returns it as a button
func (d *Device) OpenButton(pin int) (*Button, error) {
	if err := d.ConfigureGPIO(pin, true); err != nil {
		return nil, fmt.Errorf("failed to configure button on GP%d: %w", pin, err)
	}
	return &Button{dev: d, pin: pin}, nil
}

// Level implements hal.Button. A failed read reports released.
func (b *Button) Level() bool {
	high, err := b.dev.GPIO(b.pin)
	if err != nil {
		return true
	}
	return high
}

// LED is an LED on a GP output. The pin has no PWM, so any duty at or above
// Threshold lights it.
type LED struct {
	dev *Device
	pin int
	lit bool
	set bool

	Threshold uint8
}

// OpenLED designates pin as an output and switches the LED off
func (d *Device) OpenLED(pin int) (*LED, error) {
	if err := d.ConfigureGPIO(pin, false); err != nil {
		return nil, fmt.Errorf("failed to configure LED on GP%d: %w", pin, err)
	}
	l := &LED{dev: d, pin: pin, Threshold: 0x80}
	if err := l.SetDuty(0); err != nil {
		return nil, err
	}
	return l, nil
}

// SetDuty implements hal.LED. The pin is only written when the level changes.
func (l *LED) SetDuty(duty uint8) error {
	lit := duty >= l.Threshold && duty > 0
	if l.set && lit == l.lit {
		return nil
	}
	if err := l.dev.SetGPIO(l.pin, lit); err != nil {
		return err
	}
	l.lit = lit
	l.set = true
	return nil
}
