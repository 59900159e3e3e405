package registers

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// loopback is a bus that keeps the last written span and serves a fixed read image
type loopback struct {
	readImage [ImageSize]byte
	written   [][]byte
	err       error
}

func (l *loopback) Read(p []byte) error {
	if l.err != nil {
		return l.err
	}
	copy(p, l.readImage[:])
	return nil
}

func (l *loopback) Write(p []byte) error {
	if l.err != nil {
		return l.err
	}
	l.written = append(l.written, append([]byte(nil), p...))
	return nil
}

func TestOffsetTable(t *testing.T) {
	seen := map[int]Register{}
	for reg := Register(0); reg < Count; reg++ {
		offset := Offset(reg)
		assert.True(t, offset%2 == 0)
		assert.True(t, offset >= 0 && offset <= ImageSize-2)

		other, dup := seen[offset]
		assert.False(t, dup, "offset shared with "+other.String())
		seen[offset] = reg

		// Reads start at 0xA and wrap, so the offset is the read position
		assert.Equal(t, int((reg+Count-ReadStart)%Count)*2, offset)
	}
}

func TestWriteSpanIsContiguous(t *testing.T) {
	for reg := WriteStart; reg < WriteEnd; reg++ {
		assert.Equal(t, Offset(reg)+2, Offset(reg+1))
	}
	assert.Equal(t, 6, WriteCount)
}

func TestGetSetRoundTrip(t *testing.T) {
	s := NewShadow(&loopback{})
	values := []uint16{0x0000, 0x0001, 0x00FF, 0x8000, 0xABCD, 0xFFFF}

	for reg := Register(0); reg < Count; reg++ {
		for _, v := range values {
			s.Set(reg, v)
			assert.Equal(t, v, s.Get(reg))
		}
	}
}

func TestSetIsBigEndian(t *testing.T) {
	s := NewShadow(&loopback{})
	s.Set(POWERCFG, 0xE201)

	image := s.Image()
	assert.Equal(t, byte(0xE2), image[16])
	assert.Equal(t, byte(0x01), image[17])
}

func TestSetDoesNotDisturbNeighbours(t *testing.T) {
	s := NewShadow(&loopback{})
	for reg := Register(0); reg < Count; reg++ {
		s.Set(reg, uint16(reg)*0x1111)
	}
	s.Set(CHANNEL, 0xFFFF)

	for reg := Register(0); reg < Count; reg++ {
		if reg == CHANNEL {
			continue
		}
		assert.Equal(t, uint16(reg)*0x1111, s.Get(reg))
	}
}

func TestModify(t *testing.T) {
	s := NewShadow(&loopback{})
	s.Set(SYSCONFIG2, 0x0A15)
	s.Modify(SYSCONFIG2, Sys2VolumeMask, 0x000F)
	assert.Equal(t, uint16(0x0A1F), s.Get(SYSCONFIG2))

	s.Modify(SYSCONFIG2, Sys2VolumeMask, 0x00F3)
	assert.Equal(t, uint16(0x0A13), s.Get(SYSCONFIG2))
}

func TestReadAllOverwritesImage(t *testing.T) {
	b := &loopback{}
	for i := range b.readImage {
		b.readImage[i] = byte(i)
	}
	s := NewShadow(b)
	s.Set(POWERCFG, 0x1234)

	assert.NoError(t, s.ReadAll())
	assert.Equal(t, uint16(0x0001), s.Get(STATUSRSSI))
	assert.Equal(t, uint16(0x0C0D), s.Get(DEVICEID))
	assert.Equal(t, uint16(0x1011), s.Get(POWERCFG))
	assert.Equal(t, uint16(0x1E1F), s.Get(BOOTCONFIG))
}

func TestReadAllFailureKeepsImage(t *testing.T) {
	b := &loopback{err: errors.New("nak")}
	s := NewShadow(b)
	s.Set(CHANNEL, 0x0042)

	assert.Error(t, s.ReadAll())
	assert.Equal(t, uint16(0x0042), s.Get(CHANNEL))
}

func TestWriteConfigSendsOnlyPowerThroughTest1(t *testing.T) {
	b := &loopback{}
	s := NewShadow(b)
	for reg := Register(0); reg < Count; reg++ {
		s.Set(reg, 0xA000|uint16(reg))
	}

	assert.NoError(t, s.WriteConfig())
	assert.Len(t, b.written, 1)

	span := b.written[0]
	assert.Len(t, span, 12)
	for i := 0; i < WriteCount; i++ {
		reg := WriteStart + Register(i)
		assert.Equal(t, byte(0xA0), span[i*2])
		assert.Equal(t, byte(reg), span[i*2+1])
	}
}

func TestAccessors(t *testing.T) {
	s := NewShadow(&loopback{})
	s.Set(CHANNEL, ChannelTUNE|0x0155)
	s.Set(STATUSRSSI, StatusSTC|StatusST|0x0023)
	s.Set(SYSCONFIG2, 0x0A00|2<<Sys2BandShift|1<<Sys2SpaceShift|0x7)
	s.Set(POWERCFG, PowerBaseline)

	assert.Equal(t, uint16(0x0155), Channel(s))
	assert.True(t, TuneRequested(s))
	assert.True(t, TuneComplete(s))
	assert.True(t, Stereo(s))
	assert.Equal(t, uint8(0x23), RSSI(s))
	assert.Equal(t, uint8(2), Band(s))
	assert.Equal(t, uint8(1), Spacing(s))
	assert.Equal(t, uint8(7), Volume(s))
	assert.False(t, Muted(s))

	snap := Snapshot(s)
	assert.Equal(t, s.Get(SYSCONFIG2), snap.SYSCONFIG2)
	assert.Equal(t, s.Get(CHANNEL), snap.CHANNEL)
}

func TestRegisterString(t *testing.T) {
	assert.Equal(t, "STATUSRSSI", STATUSRSSI.String())
	assert.Equal(t, "UNKNOWN", Register(0x42).String())
}
