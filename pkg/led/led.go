// Package led maps the radio's display state to status LED duty cycles.
package led

// MaxDuty drives the LED fully on
const MaxDuty = 0xFF

// Pattern is a tick driven LED pattern
type Pattern uint8

const (
	Off   Pattern = iota
	Slow          // toggles every 32 ticks
	Fast          // toggles every 16 ticks
	Solid         // always on
)

func (p Pattern) String() string {
	switch p {
	case Off:
		return "off"
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	case Solid:
		return "solid"
	default:
		return "unknown"
	}
}

// Duty returns the duty cycle for the pattern at ticks
func (p Pattern) Duty(ticks uint16) uint8 {
	switch p {
	case Slow:
		return lit(ticks&32 != 0)
	case Fast:
		return lit(ticks&16 != 0)
	case Solid:
		return MaxDuty
	default:
		return 0
	}
}

func lit(on bool) uint8 {
	if on {
		return MaxDuty
	}
	return 0
}
