package config

import (
	"fmt"
	"math"
)

// Band is the SYSCONFIG2 band select code
type Band uint8

const (
	BandWorldwide Band = 0 // 87.5 - 108 MHz
	BandJapanWide Band = 1 // 76 - 108 MHz
	BandJapan     Band = 2 // 76 - 90 MHz
)

// Spacing is the SYSCONFIG2 channel spacing code
type Spacing uint8

const (
	Spacing200kHz Spacing = 0 // Americas, Korea
	Spacing100kHz Spacing = 1 // Europe, Japan
	Spacing50kHz  Spacing = 2
)

var bandLimits = map[Band][2]float64{
	BandWorldwide: {87.5, 108.0},
	BandJapanWide: {76.0, 108.0},
	BandJapan:     {76.0, 90.0},
}

var spacingMHz = map[Spacing]float64{
	Spacing200kHz: 0.2,
	Spacing100kHz: 0.1,
	Spacing50kHz:  0.05,
}

// Limits returns the bottom and top of the band in MHz. Undefined codes
// behave as the worldwide band.
func (b Band) Limits() (bottom, top float64) {
	limits, ok := bandLimits[b]
	if !ok {
		limits = bandLimits[BandWorldwide]
	}
	return limits[0], limits[1]
}

func (b Band) String() string {
	switch b {
	case BandWorldwide:
		return "87.5-108"
	case BandJapanWide:
		return "76-108"
	case BandJapan:
		return "76-90"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(b))
	}
}

// MHz returns the channel step. Undefined codes behave as 200 kHz.
func (s Spacing) MHz() float64 {
	step, ok := spacingMHz[s]
	if !ok {
		return spacingMHz[Spacing200kHz]
	}
	return step
}

func (s Spacing) String() string {
	switch s {
	case Spacing200kHz:
		return "200kHz"
	case Spacing100kHz:
		return "100kHz"
	case Spacing50kHz:
		return "50kHz"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(s))
	}
}

// FrequencyMHz converts a channel number to its frequency
func FrequencyMHz(band Band, spacing Spacing, channel uint16) float64 {
	bottom, _ := band.Limits()
	return bottom + float64(channel)*spacing.MHz()
}

// ChannelFor converts a frequency to the nearest channel number
func ChannelFor(band Band, spacing Spacing, mhz float64) (uint16, error) {
	bottom, top := band.Limits()
	if mhz < bottom || mhz > top {
		return 0, fmt.Errorf("%w: %.2f MHz not in %s", ErrOutOfBand, mhz, band)
	}
	return uint16(math.Round((mhz - bottom) / spacing.MHz())), nil
}
