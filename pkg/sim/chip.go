// Package sim provides host-side stand-ins for the radio's hardware: an
// Si4702 register model on a fake bus, a push button, an LED, a supply
// voltmeter and a factory programmer link.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/herlein/pubradio/pkg/registers"
)

// Identification words reported by a simulated Si4702 rev C
const (
	DeviceID = 0x1242
	ChipID   = 0x1053
)

// ErrBusFault is returned by an injected transfer failure
var ErrBusFault = errors.New("simulated bus fault")

// Chip simulates the Si4702 as seen over the two-wire bus. Reads start at
// STATUSRSSI and wrap; writes start at POWERCFG.
type Chip struct {
	mu sync.Mutex

	regs    [registers.Count]uint16
	writes  [][]uint16
	reads   int
	failOps int

	// RSSI reported once a tune completes
	SignalRSSI uint8
}

// NewChip returns a chip in its post-reset state
func NewChip() *Chip {
	c := &Chip{SignalRSSI: 40}
	c.regs[registers.DEVICEID] = DeviceID
	c.regs[registers.CHIPID] = ChipID
	c.regs[registers.TEST1] = registers.Test1Reserved
	return c
}

// Read implements bus.Bus
func (c *Chip) Read(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.takeFault() {
		return ErrBusFault
	}
	if len(p)%2 != 0 {
		return fmt.Errorf("odd read length %d", len(p))
	}

	c.reads++
	reg := int(registers.ReadStart)
	for i := 0; i < len(p); i += 2 {
		value := c.regs[reg%registers.Count]
		p[i] = byte(value >> 8)
		p[i+1] = byte(value)
		reg++
	}
	return nil
}

// Write implements bus.Bus
func (c *Chip) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.takeFault() {
		return ErrBusFault
	}
	if len(p)%2 != 0 {
		return fmt.Errorf("odd write length %d", len(p))
	}

	words := make([]uint16, 0, len(p)/2)
	reg := int(registers.WriteStart)
	for i := 0; i < len(p); i += 2 {
		value := uint16(p[i])<<8 | uint16(p[i+1])
		words = append(words, value)
		c.store(registers.Register(reg%registers.Count), value)
		reg++
	}
	c.writes = append(c.writes, words)
	return nil
}

// store applies a register write and its side effects
func (c *Chip) store(reg registers.Register, value uint16) {
	// Read-only registers ignore writes
	if reg < registers.POWERCFG || reg > registers.BOOTCONFIG {
		return
	}
	c.regs[reg] = value

	if reg != registers.CHANNEL {
		return
	}
	status := c.regs[registers.STATUSRSSI]
	if value&registers.ChannelTUNE != 0 && c.enabled() {
		status |= registers.StatusSTC
		status = (status &^ registers.StatusRSSI) | uint16(c.SignalRSSI)
		c.regs[registers.READCHAN] = value & registers.ReadChanMask
	} else {
		status &^= registers.StatusSTC
	}
	c.regs[registers.STATUSRSSI] = status
}

func (c *Chip) enabled() bool {
	power := c.regs[registers.POWERCFG]
	return power&registers.PowerENABLE != 0 && power&registers.PowerDISABLE == 0
}

func (c *Chip) takeFault() bool {
	if c.failOps > 0 {
		c.failOps--
		return true
	}
	return false
}

// FailNext makes the next n transfers fail with ErrBusFault
func (c *Chip) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOps = n
}

// Register returns the chip-side value of reg
func (c *Chip) Register(reg registers.Register) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg&0x0F]
}

// Enabled reports whether the chip is powered up
func (c *Chip) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled()
}

// Writes returns every write transaction received, as register words
func (c *Chip) Writes() [][]uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]uint16, len(c.writes))
	for i, w := range c.writes {
		out[i] = append([]uint16(nil), w...)
	}
	return out
}

// Reads returns the number of read transactions received
func (c *Chip) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
