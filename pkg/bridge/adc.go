package bridge

import "fmt"

// adcChannel maps GP1 - GP3 to ADC channels 0 - 2
func adcChannel(pin int) (int, error) {
	if pin < 1 || pin > 3 {
		return 0, fmt.Errorf("%w: GP%d", ErrNotADCCapable, pin)
	}
	return pin - 1, nil
}

// SetADCReference selects the ADC voltage reference
func (d *Device) SetADCReference(ref VRef) error {
	report := newReport(CmdSRAMSet)
	report[sramADCRef] = 1<<7 | byte(ref)
	_, err := d.command(report)
	return err
}

// ReadADC returns the raw 10-bit sample of an ADC pin
func (d *Device) ReadADC(pin int) (uint16, error) {
	channel, err := adcChannel(pin)
	if err != nil {
		return 0, err
	}
	status, err := d.Status()
	if err != nil {
		return 0, err
	}
	return status.ADC[channel], nil
}

// Voltmeter samples a supply rail through a resistor divider on an ADC pin
type Voltmeter struct {
	dev *Device
	pin int
	ref VRef

	// VDD is the bridge supply, used when the reference is VRefVDD
	VDD float64

	// Scale undoes the divider: volts at the rail per volt at the pin
	Scale float64
}

// OpenVoltmeter designates pin as an ADC input with the given reference
func (d *Device) OpenVoltmeter(pin int, ref VRef) (*Voltmeter, error) {
	if _, err := adcChannel(pin); err != nil {
		return nil, err
	}
	if err := d.designate(pin, gpModeADC, dirInput); err != nil {
		return nil, fmt.Errorf("failed to configure ADC on GP%d: %w", pin, err)
	}
	if err := d.SetADCReference(ref); err != nil {
		return nil, fmt.Errorf("failed to set ADC reference: %w", err)
	}
	return &Voltmeter{dev: d, pin: pin, ref: ref, VDD: 3.3, Scale: 1}, nil
}

// SampleVoltage implements hal.Voltmeter
func (v *Voltmeter) SampleVoltage() (float64, error) {
	raw, err := v.dev.ReadADC(v.pin)
	if err != nil {
		return 0, err
	}
	return float64(raw) / ADCMax * v.ref.Volts(v.VDD) * v.Scale, nil
}
