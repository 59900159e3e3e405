package config

import "errors"

var (
	// ErrBadCRC is returned when a record fails its checksum
	ErrBadCRC = errors.New("record checksum mismatch")

	// ErrShortRecord is returned when decoding fewer than RecordSize bytes
	ErrShortRecord = errors.New("record too short")

	// ErrMemoryTooSmall is returned when the memory cannot hold both records
	ErrMemoryTooSmall = errors.New("memory too small for configuration records")

	// ErrOutOfBand is returned for a frequency outside the selected band
	ErrOutOfBand = errors.New("frequency outside band")

	// ErrUnknownPreset is returned for a preset name that is not defined
	ErrUnknownPreset = errors.New("unknown preset")
)
