// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Audio    AudioConfig    `toml:"audio"`
	MIDI     MIDIConfig     `toml:"midi"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Root        *string  `toml:"root"`
	Scale       *string  `toml:"scale"`
	Direction   *string  `toml:"direction"`
	Tempo       *int     `toml:"tempo"`
	Repetitions *int     `toml:"repetitions"`
	Octave      *int     `toml:"octave"`
	Random      *bool    `toml:"random"`
	CountInMs   *int     `toml:"count-in-ms"`
	FocusWeak   *bool    `toml:"focus-weak"`
	WeakTop     *int     `toml:"weak-top"`
	WeakFactor  *float64 `toml:"weak-factor"`
	WeakWindow  *int     `toml:"weak-window"`
}

// AudioConfig maps sound output settings.
type AudioConfig struct {
	SoundFont  *string `toml:"soundfont"`
	SampleRate *int    `toml:"sample-rate"`
	Disabled   *bool   `toml:"disabled"`
}

// MIDIConfig maps MIDI input settings.
type MIDIConfig struct {
	Port *string `toml:"port"`
}

// LogConfig maps log settings.
type LogConfig struct {
	File  *string `toml:"file"`
	Debug *bool   `toml:"debug"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written by `tuiano config` when no file exists yet.
const Template = `# tuiano configuration

[practice]
# root = "C"
# scale = "major"           # major, natural-minor, pentatonic-major, pentatonic-minor, blues
# direction = "ascending"   # ascending, descending, both
# tempo = 80
# repetitions = 1
# octave = 4
# random = false
# count-in-ms = 2000
# focus-weak = false
# weak-top = 3
# weak-factor = 1.0
# weak-window = 20

[audio]
# soundfont = "/usr/share/sounds/sf2/FluidR3_GM.sf2"
# sample-rate = 44100
# disabled = false

[midi]
# port = ""

[log]
# file = ""
# debug = false
`

// WriteTemplate creates the config file with commented defaults unless it
// already exists.
func WriteTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := EnsureDir(path); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
