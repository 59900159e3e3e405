// Package button classifies the samples of an active-low push button, taken
// once per timer tick, into press durations and dispatches them through a
// threshold table.
//
// Leading edges are debounced by the table itself: nothing fires until the
// press has been sampled low for the first threshold. Trailing edges are
// debounced by requiring ReleaseSamples consecutive high samples.
//
// While a press is held, crossing a threshold fires that entry's display
// action. The press action of the deepest entry crossed fires once, on
// release.
package button

import (
	"errors"
	"fmt"
	"math"
)

// ReleaseSamples is the number of consecutive released samples that end a press
const ReleaseSamples = 4

const releasedMask = 1<<ReleaseSamples - 1

// Action identifies a callout in the dispatch table
type Action uint8

const (
	ActionNone Action = iota
	ActionShort
	ActionLong
	ActionVeryLong
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionShort:
		return "short"
	case ActionLong:
		return "long"
	case ActionVeryLong:
		return "very-long"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Entry is one row of the dispatch table
type Entry struct {
	Ticks   uint16 // press depth in ticks; zero terminates the table
	Press   Action // fired on release when this is the deepest entry crossed
	Display Action // fired as the press crosses Ticks
}

// DefaultTable is the radio's table at a 10 ms tick: 50 ms, 2 s and 4 s
func DefaultTable() []Entry {
	return []Entry{
		{Ticks: 5, Press: ActionShort, Display: ActionNone},
		{Ticks: 200, Press: ActionLong, Display: ActionLong},
		{Ticks: 400, Press: ActionVeryLong, Display: ActionVeryLong},
		{},
	}
}

// ErrTableOrder is returned for a table whose thresholds do not strictly increase
var ErrTableOrder = errors.New("dispatch thresholds must strictly increase")

// Handler receives dispatched actions. ActionNone is never delivered.
type Handler interface {
	Press(Action)
	Display(Action)
}

// Engine holds the debounce and press timing state. It is not safe for
// concurrent use; callers serialize Sample with whatever else the handler
// touches.
type Engine struct {
	table   []Entry
	handler Handler

	history     uint8  // last ReleaseSamples levels, 1 = released
	active      uint16 // pressed samples in the current press
	pressing    bool
	armed       int // index of the deepest entry crossed, -1 if none
	lastRelease uint16
}

// NewEngine validates table and creates an engine dispatching to handler.
// The table is read up to its first zero threshold.
func NewEngine(table []Entry, handler Handler) (*Engine, error) {
	var entries []Entry
	for i, e := range table {
		if e.Ticks == 0 {
			break
		}
		if i > 0 && e.Ticks <= table[i-1].Ticks {
			return nil, fmt.Errorf("%w: entry %d (%d ticks) after %d ticks",
				ErrTableOrder, i, e.Ticks, table[i-1].Ticks)
		}
		entries = append(entries, e)
	}

	return &Engine{
		table:   entries,
		handler: handler,
		history: releasedMask,
		armed:   -1,
	}, nil
}

// Sample feeds one tick's pin level. level is true when the pin reads high
// (released). now is the current tick count, recorded when a press ends.
func (e *Engine) Sample(level bool, now uint16) {
	e.history <<= 1
	if level {
		e.history |= 1
	}
	e.history &= releasedMask

	if e.history == releasedMask {
		if e.pressing {
			e.release(now)
		}
		return
	}

	e.pressing = true
	if level {
		// bounce or trailing edge not yet debounced
		return
	}

	if e.active < math.MaxUint16 {
		e.active++
	}
	for i, entry := range e.table {
		if entry.Ticks == e.active {
			e.armed = i
			if entry.Display != ActionNone {
				e.handler.Display(entry.Display)
			}
		}
	}
}

func (e *Engine) release(now uint16) {
	if e.armed >= 0 {
		if action := e.table[e.armed].Press; action != ActionNone {
			e.handler.Press(action)
		}
	}
	e.armed = -1
	e.active = 0
	e.pressing = false
	e.lastRelease = now
}

// LastRelease returns the tick count at which the last press ended
func (e *Engine) LastRelease() uint16 {
	return e.lastRelease
}

// SetLastRelease overrides the recorded release time
func (e *Engine) SetLastRelease(ticks uint16) {
	e.lastRelease = ticks
}

// Pressing reports whether a press is in progress, including its release debounce
func (e *Engine) Pressing() bool {
	return e.pressing
}

// Active returns the number of pressed samples in the current press
func (e *Engine) Active() uint16 {
	return e.active
}
