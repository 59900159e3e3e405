package nvm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is an image persisted to disk. Every store rewrites the file so the
// image survives a killed simulator the same way EEPROM survives power loss.
type File struct {
	*RAM
	path string
}

// OpenFile loads the image at path. A missing file yields an erased image of
// size bytes that is created on the first store.
func OpenFile(path string, size int) (*File, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &File{RAM: NewRAM(size), path: path}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if len(data) < size {
		padded := NewRAM(size)
		copy(padded.cells, data)
		return &File{RAM: padded, path: path}, nil
	}
	return &File{RAM: NewRAMFrom(data), path: path}, nil
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

func (f *File) StoreByte(addr int, value byte) error {
	if err := f.RAM.StoreByte(addr, value); err != nil {
		return err
	}
	return f.Sync()
}

func (f *File) StoreWord(addr int, value uint16) error {
	if err := f.RAM.StoreWord(addr, value); err != nil {
		return err
	}
	return f.Sync()
}

// Sync writes the whole image to disk
func (f *File) Sync() error {
	directory := filepath.Dir(f.path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(f.path, f.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
