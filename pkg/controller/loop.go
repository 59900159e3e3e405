package controller

import (
	"context"
	"time"

	"github.com/herlein/pubradio/pkg/hal"
	"golang.org/x/sync/errgroup"
)

// Run drives the controller until ctx is done: one task samples btn every
// tick period and calls Interrupt, the other runs Step each time it is
// woken by a tick.
func (c *Controller) Run(ctx context.Context, btn hal.Button) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunning
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ticker := time.NewTicker(c.opts.TickPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				c.Interrupt(btn.Level())
			}
		}
	})

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.wake:
				c.Step()
			}
		}
	})

	return group.Wait()
}

// Running reports whether Run is active
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
