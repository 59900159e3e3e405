package tuner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/herlein/pubradio/pkg/registers"
	"github.com/herlein/pubradio/pkg/sim"
	"github.com/herlein/pubradio/pkg/tuner"
	"github.com/retroenv/retrogolib/assert"
)

// delays records settle delays instead of sleeping
type delays []time.Duration

func (d *delays) sleep(v time.Duration) {
	*d = append(*d, v)
}

func newSequencer(t *testing.T) (*tuner.Sequencer, *sim.Chip, *delays) {
	t.Helper()
	chip := sim.NewChip()
	seq := tuner.New(registers.NewShadow(chip))
	recorded := &delays{}
	seq.Delay = recorded.sleep
	return seq, chip, recorded
}

func TestPowerUpSequence(t *testing.T) {
	seq, chip, recorded := newSequencer(t)

	err := seq.PowerUp(tuner.Settings{
		Band:       0,
		DeEmphasis: true,
		Spacing:    1,
		Channel:    9,
		Volume:     0x0F,
	})
	assert.NoError(t, err)
	assert.True(t, seq.Powered())
	assert.True(t, chip.Enabled())

	// oscillator, power-up, tune
	assert.Equal(t, 3, len(*recorded))
	assert.Equal(t, tuner.OscillatorSettle, (*recorded)[0])
	assert.Equal(t, tuner.PowerUpSettle, (*recorded)[1])
	assert.Equal(t, tuner.TuneSettle, (*recorded)[2])

	writes := chip.Writes()
	assert.Equal(t, 7, len(writes))

	// First write only enables the crystal oscillator
	first := writes[0]
	assert.Equal(t, 6, len(first))
	assert.Equal(t, uint16(registers.Test1Oscillator), first[5])
	assert.Equal(t, uint16(0), first[0])

	// Second write sets the baseline power configuration
	assert.Equal(t, uint16(registers.PowerBaseline), writes[1][0])

	// Exactly one forced read during power-up
	assert.Equal(t, 1, chip.Reads())

	// Final chip state
	assert.Equal(t, uint16(9), chip.Register(registers.CHANNEL))
	assert.Equal(t, uint16(0), chip.Register(registers.CHANNEL)&registers.ChannelTUNE)
	assert.Equal(t, uint16(registers.Sys1DE), chip.Register(registers.SYSCONFIG1)&registers.Sys1DE)

	sys2 := chip.Register(registers.SYSCONFIG2)
	assert.Equal(t, uint16(registers.SeekRSSIThreshold), sys2>>registers.Sys2SeekThShift)
	assert.Equal(t, uint16(1), (sys2&registers.Sys2SpaceMask)>>registers.Sys2SpaceShift)
	assert.Equal(t, uint16(0x0F), sys2&registers.Sys2VolumeMask)
	assert.Equal(t, uint16(9), seq.CurrentChannel())
}

func TestPowerUpClearsStaleTuneComplete(t *testing.T) {
	seq, chip, _ := newSequencer(t)
	assert.NoError(t, seq.PowerUp(tuner.Settings{Channel: 3}))

	// oscillator, power, config, channel clear, tune request, tune clear, volume
	writes := chip.Writes()
	assert.Equal(t, 7, len(writes))
	assert.Equal(t, uint16(0x0000), writes[3][1])
	assert.Equal(t, registers.ChannelTUNE|uint16(3), writes[4][1])
	assert.Equal(t, uint16(3), writes[5][1])
	assert.Equal(t, uint16(0), chip.Register(registers.STATUSRSSI)&registers.StatusSTC)
}

func TestTuneDirectAlwaysClearsTuneBit(t *testing.T) {
	tests := []struct {
		name    string
		channel uint16
		want    uint16
	}{
		{name: "zero", channel: 0, want: 0},
		{name: "typical", channel: 80, want: 80},
		{name: "max field value", channel: registers.ChannelMask, want: registers.ChannelMask},
		{name: "truncated", channel: 0x0200 | 0x0042, want: 0x0042},
		{name: "all ones", channel: 0xFFFF, want: registers.ChannelMask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, chip, recorded := newSequencer(t)
			assert.NoError(t, seq.PowerUp(tuner.Settings{}))
			before := len(chip.Writes())
			*recorded = nil

			assert.NoError(t, seq.TuneDirect(tt.channel))

			writes := chip.Writes()[before:]
			assert.Equal(t, 2, len(writes))
			assert.Equal(t, registers.ChannelTUNE|tt.want, writes[0][1])
			assert.Equal(t, tt.want, writes[1][1])
			assert.Equal(t, 1, len(*recorded))
			assert.Equal(t, tuner.TuneSettle, (*recorded)[0])

			assert.Equal(t, tt.want, seq.CurrentChannel())
			assert.False(t, registers.TuneRequested(seq.Registers()))
		})
	}
}

func TestTuneDirectClearsTuneBitAfterFailedRequest(t *testing.T) {
	seq, chip, _ := newSequencer(t)
	assert.NoError(t, seq.PowerUp(tuner.Settings{}))

	chip.FailNext(1)
	assert.Error(t, seq.TuneDirect(12))

	// The clear still went out and left the channel field intact
	assert.Equal(t, uint16(12), chip.Register(registers.CHANNEL))
	assert.False(t, registers.TuneRequested(seq.Registers()))
}

func TestTuneDirectRequiresPower(t *testing.T) {
	seq, chip, _ := newSequencer(t)
	assert.True(t, errors.Is(seq.TuneDirect(5), tuner.ErrPoweredDown))
	assert.Equal(t, 0, len(chip.Writes()))
}

func TestVolumeAndMute(t *testing.T) {
	seq, chip, _ := newSequencer(t)
	assert.NoError(t, seq.PowerUp(tuner.Settings{Volume: 4}))
	assert.Equal(t, uint16(4), chip.Register(registers.SYSCONFIG2)&registers.Sys2VolumeMask)

	assert.NoError(t, seq.SetVolume(0x1F))
	assert.Equal(t, uint16(tuner.MaxVolume), chip.Register(registers.SYSCONFIG2)&registers.Sys2VolumeMask)

	assert.NoError(t, seq.Mute(true))
	assert.Equal(t, uint16(0), chip.Register(registers.POWERCFG)&registers.PowerDMUTE)
	assert.NoError(t, seq.Mute(false))
	assert.Equal(t, uint16(registers.PowerDMUTE), chip.Register(registers.POWERCFG)&registers.PowerDMUTE)
}

func TestPowerDown(t *testing.T) {
	seq, chip, _ := newSequencer(t)
	assert.NoError(t, seq.PowerUp(tuner.Settings{Channel: 7}))

	assert.NoError(t, seq.PowerDown())
	assert.False(t, seq.Powered())
	assert.False(t, chip.Enabled())
	assert.Equal(t, uint16(registers.PowerDown), chip.Register(registers.POWERCFG))

	before := len(chip.Writes())
	assert.True(t, errors.Is(seq.TuneDirect(8), tuner.ErrPoweredDown))
	assert.True(t, errors.Is(seq.SetVolume(3), tuner.ErrPoweredDown))
	assert.True(t, errors.Is(seq.Mute(true), tuner.ErrPoweredDown))
	assert.Equal(t, before, len(chip.Writes()))

	assert.NoError(t, seq.PowerUp(tuner.Settings{Channel: 7}))
	assert.True(t, seq.Powered())
}
