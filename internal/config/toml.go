package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Device  DeviceConfig  `toml:"device"`
	Session SessionConfig `toml:"session"`
	Client  ClientConfig  `toml:"client"`
	Tone    ToneConfig    `toml:"tone"`
	Log     LogConfig     `toml:"log"`
}

// DeviceConfig locates the trainer.
type DeviceConfig struct {
	Host *string `toml:"host"`
	Port *int    `toml:"port"`
}

// SessionConfig holds the values sent with a start command.
type SessionConfig struct {
	Profile *int `toml:"profile"`
	Speed   *int `toml:"speed"`
}

// ClientConfig toggles optional components.
type ClientConfig struct {
	Heatmap     *bool   `toml:"heatmap"`
	Keyboard    *bool   `toml:"keyboard"`
	Tone        *bool   `toml:"tone"`
	Input       *string `toml:"input"`
	ShowAnswers *bool   `toml:"show-answers"`
}

// ToneConfig maps sidetone settings.
type ToneConfig struct {
	Frequency *float64 `toml:"frequency"`
	Volume    *float64 `toml:"volume"`
	Command   []string `toml:"command"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by the config subcommand when no file exists yet.
const Template = `# morselive configuration

[device]
# host = "192.168.4.1"
# port = 80

[session]
# profile = 1
# speed = 25

[client]
# heatmap = true
# keyboard = true
# tone = true
# input = "keys"   # "keys" or "free"
# show-answers = true

[tone]
# frequency = 800.0
# volume = 0.5
# command = ["sox", "-q", "-t", "raw", "-r", "44100", "-b", "16", "-c", "1", "-e", "signed-integer", "-", "-d"]

[log]
# level = "info"
# path = "~/.local/state/morselive/morselive.log"
`

// EnsureFile writes Template to path unless a file already exists.
func EnsureFile(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
