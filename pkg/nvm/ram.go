package nvm

import (
	"encoding/binary"
	"sync"
)

// RAM is an in-memory EEPROM image
type RAM struct {
	mu     sync.Mutex
	cells  []byte
	writes int
}

// NewRAM returns an erased image of size bytes
func NewRAM(size int) *RAM {
	cells := make([]byte, size)
	for i := range cells {
		cells[i] = Erased
	}
	return &RAM{cells: cells}
}

// NewRAMFrom returns an image holding a copy of data
func NewRAMFrom(data []byte) *RAM {
	return &RAM{cells: append([]byte(nil), data...)}
}

func (r *RAM) Size() int {
	return len(r.cells)
}

func (r *RAM) LoadByte(addr int) (byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkRange(addr, 1, len(r.cells)); err != nil {
		return 0, err
	}
	return r.cells[addr], nil
}

func (r *RAM) StoreByte(addr int, value byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkRange(addr, 1, len(r.cells)); err != nil {
		return err
	}
	r.cells[addr] = value
	r.writes++
	return nil
}

func (r *RAM) LoadWord(addr int) (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkRange(addr, 2, len(r.cells)); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.cells[addr:]), nil
}

func (r *RAM) StoreWord(addr int, value uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkRange(addr, 2, len(r.cells)); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(r.cells[addr:], value)
	r.writes++
	return nil
}

// Bytes returns a copy of the image
func (r *RAM) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.cells...)
}

// Writes returns the number of store operations performed
func (r *RAM) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
