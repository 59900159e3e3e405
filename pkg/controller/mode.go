package controller

import (
	"fmt"
	"strings"
)

// Mode is an operating or display mode
type Mode uint8

const (
	Normal Mode = iota + 1
	Tune
	SeekStart // reserved, entered but never acted on
	Seeking   // reserved
	Save
	FactoryReset
	FactoryConfirm
	Timeout // reserved
)

var modeNames = map[Mode]string{
	Normal:         "normal",
	Tune:           "tune",
	SeekStart:      "seek-start",
	Seeking:        "seeking",
	Save:           "save",
	FactoryReset:   "factory-reset",
	FactoryConfirm: "factory-confirm",
	Timeout:        "timeout",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode returns the mode with the given name
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMode, name)
}
