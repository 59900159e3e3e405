package led

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestPatternDuty(t *testing.T) {
	tests := []struct {
		pattern Pattern
		ticks   uint16
		want    uint8
	}{
		{Off, 0, 0},
		{Off, 0xFFFF, 0},
		{Solid, 0, MaxDuty},
		{Slow, 31, 0},
		{Slow, 32, MaxDuty},
		{Slow, 63, MaxDuty},
		{Slow, 64, 0},
		{Fast, 15, 0},
		{Fast, 16, MaxDuty},
		{Fast, 32, 0},
		{Fast, 48, MaxDuty},
	}

	for _, tt := range tests {
		t.Run(tt.pattern.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Duty(tt.ticks))
		})
	}
}

func TestSlowPeriod(t *testing.T) {
	changes := 0
	last := Slow.Duty(0)
	for ticks := uint16(1); ticks <= 256; ticks++ {
		if d := Slow.Duty(ticks); d != last {
			changes++
			last = d
		}
	}
	assert.Equal(t, 8, changes)
}
