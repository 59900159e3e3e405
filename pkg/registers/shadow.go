// Package registers models the Si4702 register file as an in-memory shadow.
//
// The chip's addressing is not zero based: every read starts at register 0xA
// and wraps from 0xF to 0x0, while every write starts at register 0x2. The
// shadow image is laid out in read order so a full read fills it directly,
// and registers 0x2 - 0x7 happen to form one contiguous run inside it, which
// is the only span ever written back.
//
//	offset  0  2  4  6  8 10 12 14 16 18 20 22 24 26 28 30
//	reg     A  B  C  D  E  F  0  1  2  3  4  5  6  7  8  9
//	                                 |<--- write span --->|
//
// Each register is stored big-endian (high byte first) as it appears on the
// wire.
package registers

import (
	"encoding/binary"
	"fmt"

	"github.com/herlein/pubradio/pkg/bus"
)

// Shadow is the authoritative in-memory image of the chip registers.
// It is not safe for concurrent use; the owner serializes access.
type Shadow struct {
	bus   bus.Bus
	image [ImageSize]byte
}

// NewShadow creates a zeroed shadow bound to the given chip bus
func NewShadow(b bus.Bus) *Shadow {
	return &Shadow{bus: b}
}

// Get returns the shadow value of reg. No transfer occurs.
func (s *Shadow) Get(reg Register) uint16 {
	offset := Offset(reg)
	return binary.BigEndian.Uint16(s.image[offset : offset+2])
}

// Set stores value as the shadow value of reg. No transfer occurs; callers
// commit with WriteConfig. Registers outside POWERCFG..TEST1 never reach the
// chip.
func (s *Shadow) Set(reg Register, value uint16) {
	offset := Offset(reg)
	binary.BigEndian.PutUint16(s.image[offset:offset+2], value)
}

// Modify replaces the bits selected by mask with the corresponding bits of value
func (s *Shadow) Modify(reg Register, mask uint16, value uint16) {
	s.Set(reg, (s.Get(reg) &^ mask)|(value&mask))
}

// ReadAll refills the whole image with one bulk transfer starting at
// ReadStart. On failure the image is left untouched.
func (s *Shadow) ReadAll() error {
	var buf [ImageSize]byte
	if err := s.bus.Read(buf[:]); err != nil {
		return fmt.Errorf("failed to read registers: %w", err)
	}
	s.image = buf
	return nil
}

// WriteConfig writes registers POWERCFG through TEST1 from the image in one
// bulk transfer. Reserved bits are written as held in the shadow, without a
// preceding read.
func (s *Shadow) WriteConfig() error {
	start := Offset(WriteStart)
	end := Offset(WriteEnd) + 2
	if err := s.bus.Write(s.image[start:end]); err != nil {
		return fmt.Errorf("failed to write registers %s-%s: %w", WriteStart, WriteEnd, err)
	}
	return nil
}

// Image returns a copy of the raw shadow image in read order
func (s *Shadow) Image() [ImageSize]byte {
	return s.image
}
