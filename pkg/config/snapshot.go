package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RecordInfo is the exported view of one slot
type RecordInfo struct {
	Record
	FrequencyMHz float64 `json:"frequency_mhz"`
	Valid        bool    `json:"valid"`
}

// Snapshot holds both records of an image
type Snapshot struct {
	Timestamp time.Time  `json:"timestamp"`
	Working   RecordInfo `json:"working"`
	Factory   RecordInfo `json:"factory"`
}

// TakeSnapshot decodes both slots without repairing them
func (s *Store) TakeSnapshot() (*Snapshot, error) {
	working, err := s.info(s.Working)
	if err != nil {
		return nil, err
	}
	factory, err := s.info(s.Factory)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Timestamp: time.Now(),
		Working:   working,
		Factory:   factory,
	}, nil
}

func (s *Store) info(read func() (Record, error)) (RecordInfo, error) {
	r, err := read()
	valid := err == nil
	if err != nil && !errors.Is(err, ErrBadCRC) {
		return RecordInfo{}, err
	}
	return RecordInfo{Record: r, FrequencyMHz: r.FrequencyMHz(), Valid: valid}, nil
}

// SaveToFile writes the snapshot as indented JSON
func SaveToFile(snapshot *Snapshot, path string) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadFromFile reads a snapshot written by SaveToFile
func LoadFromFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
