package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/sim"
	"github.com/retroenv/retrogolib/assert"
)

func TestBootRun(t *testing.T) {
	h := newHarness(t, fastOptions())

	gate, err := h.ctrl.Boot(context.Background(), Board{
		Voltmeter: sim.Voltmeter{Volts: 3.0},
	})
	assert.NoError(t, err)
	assert.Equal(t, GateRun, gate)
	assert.True(t, h.seq.Powered())
	assert.Equal(t, uint16(9), h.ctrl.CurrentChannel())

	// Startup flash
	assert.Equal(t, 2, h.led.Changes())
	assert.Equal(t, uint8(0), h.led.Duty())
}

func TestBootWithoutSensors(t *testing.T) {
	h := newHarness(t, fastOptions())
	gate, err := h.ctrl.Boot(context.Background(), Board{})
	assert.NoError(t, err)
	assert.Equal(t, GateRun, gate)
}

func TestBootLowBattery(t *testing.T) {
	tests := []struct {
		name  string
		volts hal.FixedVoltage
	}{
		{"below threshold", 1.8},
		{"at threshold", DefaultLowBatteryVolts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, fastOptions())
			ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
			defer cancel()

			gate, err := h.ctrl.Boot(ctx, Board{Voltmeter: tt.volts})
			assert.NoError(t, err)
			assert.Equal(t, GateLowBattery, gate)

			assert.False(t, h.seq.Powered())
			assert.False(t, h.chip.Enabled())
			assert.Equal(t, 0, len(h.chip.Writes()))
			assert.True(t, h.led.Changes() > 4)
			assert.Equal(t, uint8(0), h.led.Duty())
		})
	}
}

func TestBootProgramming(t *testing.T) {
	h := newHarness(t, fastOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	gate, err := h.ctrl.Boot(ctx, Board{
		Voltmeter:  sim.Voltmeter{Volts: 5.0},
		Programmer: sim.NewProgrammer([]byte{0x01, 0x23}),
	})
	assert.NoError(t, err)
	assert.Equal(t, GateProgrammed, gate)
	assert.Equal(t, uint16(0x0123), h.stored(t))
	assert.False(t, h.seq.Powered())
	assert.True(t, h.led.Changes() > 4)

	valid, err := h.store.WorkingValid()
	assert.NoError(t, err)
	assert.True(t, valid)
}

func TestBootProgrammerSilent(t *testing.T) {
	h := newHarness(t, fastOptions())
	programmer := sim.NewProgrammer(nil)
	programmer.Timeout = 2 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	gate, err := h.ctrl.Boot(ctx, Board{Programmer: programmer})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, GateProgrammed, gate)
	assert.Equal(t, 0, h.mem.Writes())
}

func TestGateString(t *testing.T) {
	assert.Equal(t, "low-battery", GateLowBattery.String())
	assert.Equal(t, "Gate(9)", Gate(9).String())
}
