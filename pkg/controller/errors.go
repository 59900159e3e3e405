package controller

import "errors"

var (
	// ErrRunning indicates Run was called while the loop is already running
	ErrRunning = errors.New("controller is already running")

	// ErrInvalidTickPeriod indicates a non-positive tick period
	ErrInvalidTickPeriod = errors.New("tick period must be positive")

	// ErrInvalidTimeout indicates a zero idle timeout
	ErrInvalidTimeout = errors.New("idle timeout must be at least one tick")

	// ErrInvalidDuration indicates a negative wake or boot duration
	ErrInvalidDuration = errors.New("duration must not be negative")

	// ErrUnknownMode indicates a mode name that does not exist
	ErrUnknownMode = errors.New("unknown mode")
)
