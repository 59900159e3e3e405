package bus

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// txRecorder is a TinyGo drivers.I2C that records transactions
type txRecorder struct {
	addr  uint16
	w     []byte
	reply []byte
	err   error
}

func (r *txRecorder) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.New("register access not used")
}

func (r *txRecorder) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.New("register access not used")
}

func (r *txRecorder) Tx(addr uint16, w, rd []byte) error {
	if r.err != nil {
		return r.err
	}
	r.addr = addr
	r.w = append([]byte(nil), w...)
	copy(rd, r.reply)
	return nil
}

func TestDrivers(t *testing.T) {
	rec := &txRecorder{reply: []byte{0x12, 0x42}}
	var b Bus = NewDrivers(rec, 0x10)

	p := make([]byte, 2)
	assert.NoError(t, b.Read(p))
	assert.Equal(t, uint16(0x10), rec.addr)
	assert.Equal(t, 0, len(rec.w))
	assert.Equal(t, byte(0x42), p[1])

	assert.NoError(t, b.Write([]byte{0x40, 0x01}))
	assert.Equal(t, 2, len(rec.w))
	assert.Equal(t, byte(0x40), rec.w[0])

	rec.err = errors.New("nack")
	err := b.Write([]byte{0x00, 0x00})
	assert.True(t, errors.Is(err, rec.err))
}

func TestPeriph(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x10, W: []byte{0x40, 0x01, 0x00, 0x00}},
			{Addr: 0x10, R: []byte{0x00, 0x00, 0x12, 0x42}},
		},
	}
	var b Bus = NewPeriph(playback, 0x10)

	assert.NoError(t, b.Write([]byte{0x40, 0x01, 0x00, 0x00}))

	p := make([]byte, 4)
	assert.NoError(t, b.Read(p))
	assert.Equal(t, byte(0x12), p[2])
	assert.NoError(t, playback.Close())
}
