// Package script drives a radio controller from Lua, one timer tick at a
// time, so button sequences can be replayed deterministically without a
// wall clock.
//
// A script sees these globals:
//
//	tick([n])              run n ticks with the button as it is (default 1)
//	hold(n)                hold the button down for n ticks
//	release()              let go and run the ticks that end a press
//	press(n)               hold for n ticks, then release()
//	tune(channel)          tune directly, as a seek would
//	mode(), display()      current operating and display mode names
//	channel()              tuned channel
//	stored_channel()       channel in the working record
//	led()                  last LED duty cycle, when an LED probe is set
//	ticks()                interrupt tick count
//	expect_mode(name)      raise an error unless the operating mode matches
//	expect_display(name)   same for the display mode
//	expect_channel(n)      raise an error unless the tuned channel matches
//	expect_stored(n)       raise an error unless the stored channel matches
//	log(msg)               write msg to the runner's logger
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/herlein/pubradio/pkg/button"
	"github.com/herlein/pubradio/pkg/controller"
	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// ErrNoLED is raised by led() when the runner has no LED probe
var ErrNoLED = errors.New("no LED probe attached")

// Radio is the controller surface a script drives
type Radio interface {
	Interrupt(level bool)
	Step()
	Tune(channel uint16) error
	Mode() controller.Mode
	Display() controller.Mode
	Ticks() uint16
	CurrentChannel() uint16
	StoredChannel() (uint16, error)
}

// DutyProbe reads back the LED duty cycle
type DutyProbe interface {
	Duty() uint8
}

// Runner executes scripts against one radio. It is not safe for concurrent
// use.
type Runner struct {
	radio  Radio
	probe  DutyProbe
	logger *log.Logger
	level  bool // raw button level, high when released
	steps  int
}

// New creates a Runner. probe may be nil.
func New(radio Radio, probe DutyProbe, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		radio:  radio,
		probe:  probe,
		logger: logger,
		level:  true,
	}
}

// Steps returns how many ticks the runner has driven
func (r *Runner) Steps() int {
	return r.steps
}

// RunString executes Lua source
func (r *Runner) RunString(ctx context.Context, source string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoString(source); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

// RunFile executes a Lua file
func (r *Runner) RunFile(ctx context.Context, path string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("script %s failed: %w", path, err)
	}
	return nil
}

func (r *Runner) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)

	functions := map[string]lua.LGFunction{
		"tick":           r.luaTick,
		"hold":           r.luaHold,
		"release":        r.luaRelease,
		"press":          r.luaPress,
		"tune":           r.luaTune,
		"mode":           r.luaMode,
		"display":        r.luaDisplay,
		"channel":        r.luaChannel,
		"stored_channel": r.luaStoredChannel,
		"led":            r.luaLED,
		"ticks":          r.luaTicks,
		"expect_mode":    r.luaExpectMode,
		"expect_display": r.luaExpectDisplay,
		"expect_channel": r.luaExpectChannel,
		"expect_stored":  r.luaExpectStored,
		"log":            r.luaLog,
	}
	for name, fn := range functions {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return L
}

// tick runs n interrupts at the current level, each followed by a
// foreground pass
func (r *Runner) tick(n int) {
	for i := 0; i < n; i++ {
		r.radio.Interrupt(r.level)
		r.radio.Step()
		r.steps++
	}
}

func checkCount(L *lua.LState, n int) int {
	count := L.OptInt(n, 1)
	if count < 0 {
		L.ArgError(n, "tick count must not be negative")
	}
	return count
}

func (r *Runner) luaTick(L *lua.LState) int {
	r.tick(checkCount(L, 1))
	return 0
}

func (r *Runner) luaHold(L *lua.LState) int {
	n := checkCount(L, 1)
	r.level = false
	r.tick(n)
	return 0
}

func (r *Runner) luaRelease(L *lua.LState) int {
	r.level = true
	r.tick(button.ReleaseSamples)
	return 0
}

func (r *Runner) luaPress(L *lua.LState) int {
	n := checkCount(L, 1)
	r.level = false
	r.tick(n)
	r.level = true
	r.tick(button.ReleaseSamples)
	r.logger.Debug("Scripted press", log.Int("ticks", n), log.Stringer("mode", r.radio.Mode()))
	return 0
}

func (r *Runner) luaTune(L *lua.LState) int {
	channel := L.CheckInt(1)
	if err := r.radio.Tune(uint16(channel)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (r *Runner) luaMode(L *lua.LState) int {
	L.Push(lua.LString(r.radio.Mode().String()))
	return 1
}

func (r *Runner) luaDisplay(L *lua.LState) int {
	L.Push(lua.LString(r.radio.Display().String()))
	return 1
}

func (r *Runner) luaChannel(L *lua.LState) int {
	L.Push(lua.LNumber(r.radio.CurrentChannel()))
	return 1
}

func (r *Runner) storedChannel(L *lua.LState) uint16 {
	channel, err := r.radio.StoredChannel()
	if err != nil {
		L.RaiseError("%v", err)
	}
	return channel
}

func (r *Runner) luaStoredChannel(L *lua.LState) int {
	L.Push(lua.LNumber(r.storedChannel(L)))
	return 1
}

func (r *Runner) luaLED(L *lua.LState) int {
	if r.probe == nil {
		L.RaiseError("%v", ErrNoLED)
	}
	L.Push(lua.LNumber(r.probe.Duty()))
	return 1
}

func (r *Runner) luaTicks(L *lua.LState) int {
	L.Push(lua.LNumber(r.radio.Ticks()))
	return 1
}

func expectMode(L *lua.LState, what string, got controller.Mode) {
	want, err := controller.ParseMode(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	if got != want {
		L.RaiseError("expected %s %s, got %s", what, want, got)
	}
}

func (r *Runner) luaExpectMode(L *lua.LState) int {
	expectMode(L, "mode", r.radio.Mode())
	return 0
}

func (r *Runner) luaExpectDisplay(L *lua.LState) int {
	expectMode(L, "display", r.radio.Display())
	return 0
}

func (r *Runner) luaExpectChannel(L *lua.LState) int {
	want := L.CheckInt(1)
	if got := r.radio.CurrentChannel(); int(got) != want {
		L.RaiseError("expected channel %d, got %d", want, got)
	}
	return 0
}

func (r *Runner) luaExpectStored(L *lua.LState) int {
	want := L.CheckInt(1)
	if got := r.storedChannel(L); int(got) != want {
		L.RaiseError("expected stored channel %d, got %d", want, got)
	}
	return 0
}

func (r *Runner) luaLog(L *lua.LState) int {
	r.logger.Info(L.CheckString(1), log.Uint16("ticks", r.radio.Ticks()))
	return 0
}
