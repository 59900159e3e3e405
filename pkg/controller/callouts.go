package controller

import (
	"github.com/herlein/pubradio/pkg/button"
	"github.com/retroenv/retrogolib/log"
)

// callouts receives button engine actions from Interrupt, with the
// controller lock held. They only write the mode and display mode.
type callouts struct {
	c *Controller
}

func (h callouts) Press(action button.Action) {
	c := h.c
	from := c.mode

	switch action {
	case button.ActionShort:
		if c.mode == Tune {
			c.mode = SeekStart
		}

	case button.ActionLong:
		switch c.mode {
		case Normal:
			c.mode = Tune
		case Tune:
			c.mode = Save
		case FactoryReset:
			c.mode = FactoryConfirm
		}

	case button.ActionVeryLong:
		if c.mode == Tune {
			c.mode = FactoryReset
		}
	}

	if c.mode != from {
		c.logger.Debug("Button press",
			log.Stringer("action", action),
			log.Stringer("from", from),
			log.Stringer("to", c.mode))
	}
}

func (h callouts) Display(action button.Action) {
	c := h.c

	switch action {
	case button.ActionLong:
		switch c.mode {
		case Normal:
			c.display = Tune
		case Tune, FactoryReset:
			c.display = Save
		}

	case button.ActionVeryLong:
		if c.mode == Tune {
			c.display = FactoryReset
		}
	}
}
