package bus

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// Drivers adapts a TinyGo drivers.I2C bus (machine.I2C on target hardware)
// to the Bus interface.
type Drivers struct {
	bus  drivers.I2C
	addr uint16
}

// NewDrivers binds a TinyGo I2C bus to the given 7-bit device address
func NewDrivers(b drivers.I2C, addr uint16) *Drivers {
	return &Drivers{bus: b, addr: addr}
}

// Read performs a read-only transaction of len(p) bytes
func (d *Drivers) Read(p []byte) error {
	if err := d.bus.Tx(d.addr, nil, p); err != nil {
		return fmt.Errorf("failed to read %d bytes from 0x%02X: %w", len(p), d.addr, err)
	}
	return nil
}

// Write performs a write-only transaction of len(p) bytes
func (d *Drivers) Write(p []byte) error {
	if err := d.bus.Tx(d.addr, p, nil); err != nil {
		return fmt.Errorf("failed to write %d bytes to 0x%02X: %w", len(p), d.addr, err)
	}
	return nil
}
