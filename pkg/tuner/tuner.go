// Package tuner drives the Si4702 through its power-up, tune, volume and
// power-down protocols using only shadow register mutations, bulk writes and
// blocking settle delays.
package tuner

import (
	"errors"
	"fmt"
	"time"

	"github.com/herlein/pubradio/pkg/registers"
)

// ErrPoweredDown is returned when a transfer is attempted while the chip is
// not powered up
var ErrPoweredDown = errors.New("tuner is powered down")

// Settings holds the persisted parameters applied at power-up
type Settings struct {
	Band       uint8  // SYSCONFIG2 band select code
	DeEmphasis bool   // 50us de-emphasis when set, 75us otherwise
	Spacing    uint8  // SYSCONFIG2 channel spacing code
	Channel    uint16 // channel number to tune after power-up
	Volume     uint8  // output volume, 0 - 15
}

// Sequencer owns the register shadow and sequences chip operations on it.
// It is not safe for concurrent use.
type Sequencer struct {
	regs    *registers.Shadow
	powered bool

	// Delay blocks for a settle period. Defaults to time.Sleep.
	Delay func(time.Duration)
}

// New creates a Sequencer over the given register shadow
func New(regs *registers.Shadow) *Sequencer {
	return &Sequencer{
		regs:  regs,
		Delay: time.Sleep,
	}
}

// Registers returns the underlying shadow store
func (s *Sequencer) Registers() *registers.Shadow {
	return s.regs
}

// Powered reports whether PowerUp has completed without a later PowerDown
func (s *Sequencer) Powered() bool {
	return s.powered
}

// PowerUp runs the documented power-up sequence and tunes to settings.Channel.
//
// Transfer errors are returned but do not stop the sequence: the shadow stays
// authoritative and later writes bring the chip back in line.
func (s *Sequencer) PowerUp(settings Settings) error {
	var errs []error
	write := func() {
		if err := s.regs.WriteConfig(); err != nil {
			errs = append(errs, err)
		}
	}

	// Crystal oscillator on, then wait for it to stabilize
	s.regs.Set(registers.TEST1, registers.Test1Oscillator)
	write()
	s.Delay(OscillatorSettle)

	// Baseline power and audio routing
	s.regs.Set(registers.POWERCFG, registers.PowerBaseline)
	write()
	s.Delay(PowerUpSettle)

	// De-emphasis, band, spacing and seek threshold
	if settings.DeEmphasis {
		s.regs.Modify(registers.SYSCONFIG1, registers.Sys1DE, registers.Sys1DE)
	}
	s.regs.Set(registers.SYSCONFIG2,
		registers.SeekRSSIThreshold<<registers.Sys2SeekThShift|
			uint16(settings.Band&0x03)<<registers.Sys2BandShift|
			uint16(settings.Spacing&0x03)<<registers.Sys2SpaceShift)
	write()

	// The chip tunes to something once enabled; a forced re-read followed
	// by clearing CHANNEL drops the stale tune-complete condition.
	if err := s.regs.ReadAll(); err != nil {
		errs = append(errs, err)
	}
	s.regs.Set(registers.CHANNEL, 0x0000)
	write()

	s.powered = true

	if err := s.tune(settings.Channel); err != nil {
		errs = append(errs, err)
	}

	registers.SetVolume(s.regs, settings.Volume)
	write()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("power-up incomplete: %w", err)
	}
	return nil
}

// TuneDirect tunes to channel. The channel is masked to the channel field
// width, never rejected.
func (s *Sequencer) TuneDirect(channel uint16) error {
	if !s.powered {
		return ErrPoweredDown
	}
	return s.tune(channel)
}

// tune sets TUNE with the channel in one write, waits for the tune to settle
// and clears TUNE with a second write. The clear is always attempted.
func (s *Sequencer) tune(channel uint16) error {
	s.regs.Set(registers.CHANNEL, registers.ChannelTUNE|(channel&registers.ChannelMask))
	requestErr := s.regs.WriteConfig()

	s.Delay(TuneSettle)

	s.regs.Modify(registers.CHANNEL, registers.ChannelTUNE, 0)
	clearErr := s.regs.WriteConfig()

	if err := errors.Join(requestErr, clearErr); err != nil {
		return fmt.Errorf("failed to tune to channel %d: %w", channel&registers.ChannelMask, err)
	}
	return nil
}

// CurrentChannel returns the channel field last read or written, regardless
// of tune completion.
func (s *Sequencer) CurrentChannel() uint16 {
	return registers.Channel(s.regs)
}

// SetVolume rewrites the volume field and commits it
func (s *Sequencer) SetVolume(volume uint8) error {
	if !s.powered {
		return ErrPoweredDown
	}
	if volume > MaxVolume {
		volume = MaxVolume
	}
	registers.SetVolume(s.regs, volume)
	return s.regs.WriteConfig()
}

// Mute engages or releases the hard mute
func (s *Sequencer) Mute(mute bool) error {
	if !s.powered {
		return ErrPoweredDown
	}
	value := uint16(registers.PowerDMUTE)
	if mute {
		value = 0
	}
	s.regs.Modify(registers.POWERCFG, registers.PowerDMUTE, value)
	return s.regs.WriteConfig()
}

// PowerDown sets ENABLE and DISABLE together and commits it. Register state
// is kept by the chip; further transfers are refused until PowerUp.
func (s *Sequencer) PowerDown() error {
	s.regs.Set(registers.POWERCFG, registers.PowerDown)
	err := s.regs.WriteConfig()
	s.powered = false
	if err != nil {
		return fmt.Errorf("failed to power down: %w", err)
	}
	return nil
}
