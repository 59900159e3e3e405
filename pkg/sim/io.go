package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Button is an active-low push button. The zero value is released.
type Button struct {
	pressed atomic.Bool
}

// Press holds the button down
func (b *Button) Press() {
	b.pressed.Store(true)
}

// Release lets the button go
func (b *Button) Release() {
	b.pressed.Store(false)
}

// Toggle flips the button state and returns true if it is now pressed
func (b *Button) Toggle() bool {
	for {
		old := b.pressed.Load()
		if b.pressed.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Level returns the raw pin level: high when released, low when pressed
func (b *Button) Level() bool {
	return !b.pressed.Load()
}

// LED records the duty cycle it is driven with
type LED struct {
	mu      sync.Mutex
	duty    uint8
	changes int
}

// SetDuty implements hal.LED
func (l *LED) SetDuty(duty uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if duty != l.duty {
		l.changes++
	}
	l.duty = duty
	return nil
}

// Duty returns the last duty cycle set
func (l *LED) Duty() uint8 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.duty
}

// Changes returns how many times the duty cycle changed value
func (l *LED) Changes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changes
}

// Voltmeter reports a fixed supply voltage
type Voltmeter struct {
	Volts float64
}

// SampleVoltage implements hal.Voltmeter
func (v Voltmeter) SampleVoltage() (float64, error) {
	return v.Volts, nil
}

// ErrNoData is returned by Programmer when no byte arrives in time
var ErrNoData = errors.New("no data from programmer")

// Programmer replays a fixed byte stream as a factory programmer would
type Programmer struct {
	mu      sync.Mutex
	present bool
	data    []byte

	// Timeout bounds how long ReceiveByte waits on an empty stream
	Timeout time.Duration
}

// NewProgrammer returns an attached programmer that will send data
func NewProgrammer(data []byte) *Programmer {
	return &Programmer{present: true, data: append([]byte(nil), data...), Timeout: 40 * time.Millisecond}
}

// Present implements hal.Programmer
func (p *Programmer) Present() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.present
}

// ReceiveByte implements hal.Programmer
func (p *Programmer) ReceiveByte(ctx context.Context) (byte, error) {
	p.mu.Lock()
	if len(p.data) > 0 {
		b := p.data[0]
		p.data = p.data[1:]
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
		return 0, ErrNoData
	}
}
