package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/herlein/pubradio/pkg/sim"
	"github.com/retroenv/retrogolib/assert"
)

func fastOptions() *Options {
	opts := DefaultOptions()
	opts.Debounce = time.Millisecond
	opts.LongPress = 50 * time.Millisecond
	opts.SaveFlash = 2 * time.Millisecond
	opts.WakePoll = time.Millisecond
	opts.StartupFlash = time.Millisecond
	opts.LowBatteryOn = 2 * time.Millisecond
	opts.LowBatteryOff = 3 * time.Millisecond
	opts.ProgrammedBlink = 2 * time.Millisecond
	return opts
}

func newWakeHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, fastOptions())
	assert.NoError(t, h.ctrl.Init())
	return h
}

func releaseAfter(btn *sim.Button, d time.Duration) {
	go func() {
		time.Sleep(d)
		btn.Release()
	}()
}

func TestWakeShortPressTunesUp(t *testing.T) {
	h := newWakeHarness(t)
	btn := &sim.Button{}
	btn.Press()
	releaseAfter(btn, 10*time.Millisecond)

	kind, err := h.ctrl.Wake(context.Background(), btn)
	assert.NoError(t, err)
	assert.Equal(t, PressShort, kind)
	assert.Equal(t, uint16(10), h.ctrl.CurrentChannel())
	assert.Equal(t, uint16(9), h.stored(t))
}

func TestWakeLongPressSaves(t *testing.T) {
	h := newWakeHarness(t)
	assert.NoError(t, h.seq.TuneDirect(77))

	btn := &sim.Button{}
	btn.Press()
	releaseAfter(btn, 150*time.Millisecond)

	kind, err := h.ctrl.Wake(context.Background(), btn)
	assert.NoError(t, err)
	assert.Equal(t, PressLong, kind)
	assert.Equal(t, uint16(77), h.stored(t))
	assert.Equal(t, uint16(77), h.ctrl.CurrentChannel())
	assert.Equal(t, uint8(0), h.led.Duty())
	assert.Equal(t, 2, h.led.Changes())
	assert.True(t, btn.Level())
}

func TestWakeIgnoresBounce(t *testing.T) {
	h := newWakeHarness(t)
	btn := &sim.Button{}

	kind, err := h.ctrl.Wake(context.Background(), btn)
	assert.NoError(t, err)
	assert.Equal(t, PressNone, kind)
	assert.Equal(t, uint16(9), h.ctrl.CurrentChannel())
}

func TestWakeStuckButtonHonoursContext(t *testing.T) {
	h := newWakeHarness(t)
	btn := &sim.Button{}
	btn.Press()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	kind, err := h.ctrl.Wake(ctx, btn)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, PressLong, kind)
	assert.Equal(t, uint8(0), h.led.Duty())
}

func TestPressKindString(t *testing.T) {
	assert.Equal(t, "long", PressLong.String())
	assert.Equal(t, "PressKind(5)", PressKind(5).String())
}
