package hal_test

import (
	"testing"

	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/sim"
	"github.com/retroenv/retrogolib/assert"
)

var (
	_ hal.Button     = (*sim.Button)(nil)
	_ hal.LED        = (*sim.LED)(nil)
	_ hal.Voltmeter  = sim.Voltmeter{}
	_ hal.Programmer = (*sim.Programmer)(nil)
	_ hal.Button     = (*hal.PinButton)(nil)
	_ hal.LED        = (*hal.PinLED)(nil)
)

func TestFixedVoltage(t *testing.T) {
	var v hal.Voltmeter = hal.FixedVoltage(3.3)
	volts, err := v.SampleVoltage()
	assert.NoError(t, err)
	assert.Equal(t, 3.3, volts)
}
