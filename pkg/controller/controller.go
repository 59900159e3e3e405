// Package controller runs the radio's user interface: it turns button
// callouts into operating mode changes and applies their tuner and
// configuration side effects from the foreground loop.
//
// Two contexts share the controller state. Interrupt is the periodic timer
// handler: it advances the tick count and feeds the button engine, whose
// callouts only ever write the mode and display mode. Step is one pass of
// the foreground loop. Both run under the same lock, so a mode written by a
// tick is observed whole by the next Step.
package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/herlein/pubradio/pkg/button"
	"github.com/herlein/pubradio/pkg/config"
	"github.com/herlein/pubradio/pkg/hal"
	"github.com/herlein/pubradio/pkg/led"
	"github.com/herlein/pubradio/pkg/tuner"
	"github.com/retroenv/retrogolib/log"
)

// Tuner is the chip sequencing the controller drives
type Tuner interface {
	PowerUp(settings tuner.Settings) error
	TuneDirect(channel uint16) error
	CurrentChannel() uint16
}

// ConfigStore is the persisted configuration the controller reads and updates
type ConfigStore interface {
	Load() (config.Record, config.Recovery, error)
	SaveChannel(channel uint16) error
	RestoreFactory() error
	StoredChannel() (uint16, error)
}

// Status is a consistent view of the controller state
type Status struct {
	Mode        Mode   `json:"mode"`
	Display     Mode   `json:"display"`
	Ticks       uint16 `json:"ticks"`
	LastRelease uint16 `json:"last_release"`
	Channel     uint16 `json:"channel"`
}

// Controller owns the mode state machine
type Controller struct {
	opts   *Options
	tuner  Tuner
	store  ConfigStore
	led    hal.LED
	logger *log.Logger

	mu      sync.Mutex
	engine  *button.Engine
	mode    Mode
	display Mode
	ticks   uint16
	duty    int // last duty written to the LED, -1 before the first write
	running bool

	wake chan struct{}
}

// New creates a controller in Normal mode. A nil opts selects
// DefaultOptions; a nil logger logs errors only.
func New(opts *Options, t Tuner, store ConfigStore, indicator hal.LED, logger *log.Logger) (*Controller, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c := &Controller{
		opts:    opts,
		tuner:   t,
		store:   store,
		led:     indicator,
		logger:  logger,
		mode:    Normal,
		display: Normal,
		duty:    -1,
		wake:    make(chan struct{}, 1),
	}

	engine, err := button.NewEngine(opts.Table, callouts{c})
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch table: %w", err)
	}
	c.engine = engine
	return c, nil
}

// Init loads the configuration, repairing it if needed, and powers the
// tuner up on the stored settings. Errors are logged and returned but the
// controller stays usable: a failed load falls back to the last-resort
// record and a failed transfer is retried by the next write.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	record, recovery, err := c.store.Load()
	if err != nil {
		c.logger.Error("Loading configuration failed, using last-resort record", log.Err(err))
		errs = append(errs, err)
		record, _ = config.Decode(config.LastResort[:])
	} else if recovery != config.RecoveryNone {
		c.logger.Warn("Configuration repaired", log.Stringer("source", recovery))
	}

	c.logger.Info("Powering up tuner",
		log.Stringer("record", record),
		log.Uint16("channel", record.Channel))

	settings := tuner.Settings{
		Band:       uint8(record.Band),
		DeEmphasis: record.DeEmphasis,
		Spacing:    uint8(record.Spacing),
		Channel:    record.Channel,
		Volume:     record.Volume,
	}
	if err := c.tuner.PowerUp(settings); err != nil {
		c.logger.Error("Tuner power-up incomplete", log.Err(err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Interrupt is the periodic timer handler. level is the raw button pin
// level for this tick.
func (c *Controller) Interrupt(level bool) {
	c.mu.Lock()
	c.ticks++
	c.engine.Sample(level, c.ticks)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Step is one foreground pass: it applies the pending mode's side effects,
// drives the LED from the display mode and enforces the idle timeout.
//
// The whole pass holds the lock, including chip and memory transfers, so
// ticks arriving meanwhile wait for it.
func (c *Controller) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case Save:
		c.saveChannel()
		c.setModes(Normal)

	case FactoryConfirm:
		c.factoryReset()
		c.setModes(Normal)
	}

	c.updateLED()

	// An armed display without a mode change, as after a very long press
	// in Normal, times out the same way once that press has ended. During a
	// press the release time still belongs to the previous one.
	idle := c.ticks-c.engine.LastRelease() > c.opts.IdleTimeout
	abandoned := c.display != Normal && !c.engine.Pressing()
	if idle && (c.mode != Normal || abandoned) {
		c.logger.Debug("Idle timeout", log.Stringer("mode", c.mode))
		c.setModes(Normal)
	}
}

func (c *Controller) saveChannel() {
	channel := c.tuner.CurrentChannel()
	stored, err := c.store.StoredChannel()
	if err != nil {
		c.logger.Error("Reading stored channel failed", log.Err(err))
	} else if stored == channel {
		c.logger.Debug("Channel unchanged, not saving", log.Uint16("channel", channel))
		return
	}

	if err := c.store.SaveChannel(channel); err != nil {
		c.logger.Error("Saving channel failed", log.Uint16("channel", channel), log.Err(err))
		return
	}
	c.logger.Info("Channel saved", log.Uint16("channel", channel))
}

func (c *Controller) factoryReset() {
	if err := c.store.RestoreFactory(); err != nil {
		c.logger.Error("Restoring factory configuration failed", log.Err(err))
	}

	channel, err := c.store.StoredChannel()
	if err != nil {
		c.logger.Error("Reading stored channel failed", log.Err(err))
		return
	}
	if err := c.tuner.TuneDirect(channel); err != nil {
		c.logger.Error("Tuning failed", log.Uint16("channel", channel), log.Err(err))
	}
	c.logger.Info("Factory configuration restored", log.Uint16("channel", channel))
}

func (c *Controller) updateLED() {
	duty := int(patternFor(c.display).Duty(c.ticks))
	if duty == c.duty {
		return
	}
	if err := c.led.SetDuty(uint8(duty)); err != nil {
		c.logger.Error("Driving LED failed", log.Err(err))
		return
	}
	c.duty = duty
}

func patternFor(display Mode) led.Pattern {
	switch display {
	case Tune:
		return led.Slow
	case FactoryReset:
		return led.Fast
	case Save:
		return led.Solid
	default:
		return led.Off
	}
}

func (c *Controller) setModes(m Mode) {
	if c.mode != m || c.display != m {
		c.logger.Debug("Mode change",
			log.Stringer("from", c.mode),
			log.Stringer("display", c.display),
			log.Stringer("to", m))
	}
	c.mode = m
	c.display = m
}

// Mode returns the operating mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Display returns the display mode
func (c *Controller) Display() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Ticks returns the tick count
func (c *Controller) Ticks() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// CurrentChannel returns the tuner's channel
func (c *Controller) CurrentChannel() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuner.CurrentChannel()
}

// StoredChannel returns the working record's channel
func (c *Controller) StoredChannel() (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.StoredChannel()
}

// Tune moves the tuner to channel outside the button flow, as a bench
// host would to stand in for seeking. The stored channel is untouched.
func (c *Controller) Tune(channel uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tuner.TuneDirect(channel); err != nil {
		return fmt.Errorf("failed to tune: %w", err)
	}
	return nil
}

// Status returns the controller state taken under one lock
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Mode:        c.mode,
		Display:     c.display,
		Ticks:       c.ticks,
		LastRelease: c.engine.LastRelease(),
		Channel:     c.tuner.CurrentChannel(),
	}
}

// Options returns the controller options
func (c *Controller) Options() *Options {
	return c.opts
}
