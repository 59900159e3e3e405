package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Periph adapts a periph.io I2C bus to the Bus interface
type Periph struct {
	dev *i2c.Dev
}

// NewPeriph binds a periph.io I2C bus to the given 7-bit device address
func NewPeriph(b i2c.Bus, addr uint16) *Periph {
	return &Periph{dev: &i2c.Dev{Bus: b, Addr: addr}}
}

// Read performs a read-only transaction of len(p) bytes
func (p *Periph) Read(buf []byte) error {
	if err := p.dev.Tx(nil, buf); err != nil {
		return fmt.Errorf("failed to read %d bytes from 0x%02X: %w", len(buf), p.dev.Addr, err)
	}
	return nil
}

// Write performs a write-only transaction of len(p) bytes
func (p *Periph) Write(buf []byte) error {
	if err := p.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("failed to write %d bytes to 0x%02X: %w", len(buf), p.dev.Addr, err)
	}
	return nil
}

// String returns the underlying device description
func (p *Periph) String() string {
	return p.dev.String()
}
