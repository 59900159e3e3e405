// Package nvm provides the byte and word addressed non-volatile memory the
// configuration records live in.
package nvm

import (
	"errors"
	"fmt"
)

// DefaultSize is the EEPROM size of the ATtiny45
const DefaultSize = 256

// Erased is the value read from a cell that was never written
const Erased = 0xFF

// ErrOutOfRange is returned for accesses past the end of the memory
var ErrOutOfRange = errors.New("address out of range")

// Memory is an EEPROM-like store. Words are little-endian.
type Memory interface {
	Size() int
	LoadByte(addr int) (byte, error)
	StoreByte(addr int, value byte) error
	LoadWord(addr int) (uint16, error)
	StoreWord(addr int, value uint16) error
}

// LoadBlock reads len(p) bytes starting at addr
func LoadBlock(m Memory, addr int, p []byte) error {
	for i := range p {
		b, err := m.LoadByte(addr + i)
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

// StoreBlock writes p starting at addr, one cell at a time
func StoreBlock(m Memory, addr int, p []byte) error {
	for i, b := range p {
		if err := m.StoreByte(addr+i, b); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(addr, width, size int) error {
	if addr < 0 || addr+width > size {
		return fmt.Errorf("%w: 0x%02X (size %d)", ErrOutOfRange, addr, size)
	}
	return nil
}
