package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Preset is a regional tuning configuration used to provision an image
type Preset struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Band         Band    `json:"band"`
	Spacing      Spacing `json:"spacing"`
	DeEmphasis   bool    `json:"de_emphasis"`
	FrequencyMHz float64 `json:"frequency_mhz"`
	Volume       uint8   `json:"volume"`
}

// PresetFile is the on-disk form of a preset list
type PresetFile struct {
	Presets []Preset `json:"presets"`
}

var builtinPresets = []Preset{
	{
		Name:         "US",
		Description:  "Americas: 87.5-108 MHz, 200 kHz spacing, 75 us de-emphasis",
		Band:         BandWorldwide,
		Spacing:      Spacing200kHz,
		FrequencyMHz: 89.3,
		Volume:       15,
	},
	{
		Name:         "EU",
		Description:  "Europe: 87.5-108 MHz, 100 kHz spacing, 50 us de-emphasis",
		Band:         BandWorldwide,
		Spacing:      Spacing100kHz,
		DeEmphasis:   true,
		FrequencyMHz: 89.3,
		Volume:       15,
	},
	{
		Name:         "JP",
		Description:  "Japan: 76-90 MHz, 100 kHz spacing, 50 us de-emphasis",
		Band:         BandJapan,
		Spacing:      Spacing100kHz,
		DeEmphasis:   true,
		FrequencyMHz: 80.0,
		Volume:       15,
	},
	{
		Name:         "JPWide",
		Description:  "Japan wide: 76-108 MHz, 100 kHz spacing, 50 us de-emphasis",
		Band:         BandJapanWide,
		Spacing:      Spacing100kHz,
		DeEmphasis:   true,
		FrequencyMHz: 80.0,
		Volume:       15,
	},
}

// Presets returns the built-in presets
func Presets() []Preset {
	return append([]Preset(nil), builtinPresets...)
}

// PresetNames returns the built-in preset names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for _, p := range builtinPresets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// FindPreset looks a preset up by case-insensitive name in presets
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

// Record converts the preset to a configuration record
func (p Preset) Record() (Record, error) {
	channel, err := ChannelFor(p.Band, p.Spacing, p.FrequencyMHz)
	if err != nil {
		return Record{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return Record{
		Band:       p.Band,
		DeEmphasis: p.DeEmphasis,
		Spacing:    p.Spacing,
		Channel:    channel,
		Volume:     p.Volume,
	}, nil
}

// LoadPresetFile reads a preset list from a JSON file
func LoadPresetFile(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var file PresetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presets: %w", err)
	}
	return file.Presets, nil
}

// SavePresetFile writes presets as a JSON file
func SavePresetFile(presets []Preset, path string) error {
	data, err := json.MarshalIndent(PresetFile{Presets: presets}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}
	return nil
}
