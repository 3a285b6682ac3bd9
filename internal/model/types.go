// Package model defines shared data structures.
package model

import (
	"github.com/verte-zerg/morselive/internal/input"
	"github.com/verte-zerg/morselive/internal/tone"
)

// Device limits.
const (
	MinSpeed       = 20
	MaxSpeed       = 200
	SpeedStep      = 2
	MaxProfile     = 9
	DefaultSpeed   = 25
	DefaultProfile = 1
)

// ValidSpeed reports whether wpm is a speed the device accepts.
func ValidSpeed(wpm int) bool {
	return wpm >= MinSpeed && wpm <= MaxSpeed
}

// ValidProfile reports whether p names a device profile.
func ValidProfile(p int) bool {
	return p >= 0 && p <= MaxProfile
}

// Capabilities selects which optional components a client wires.
type Capabilities struct {
	Heatmap          bool
	OnscreenKeyboard bool
	AudioTone        bool
}

// FullCapabilities enables every optional component.
func FullCapabilities() Capabilities {
	return Capabilities{Heatmap: true, OnscreenKeyboard: true, AudioTone: true}
}

// Config defines resolved client settings.
type Config struct {
	Host    string
	Port    int
	Profile int
	Speed   int

	Capabilities Capabilities
	InputMode    input.Mode
	ShowAnswers  bool

	ToneFrequency float64
	ToneVolume    float64
	ToneCommand   []string

	LogLevel string
	LogPath  string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Profile:       DefaultProfile,
		Speed:         DefaultSpeed,
		Capabilities:  FullCapabilities(),
		InputMode:     input.KeyOnly,
		ShowAnswers:   true,
		ToneFrequency: tone.DefaultFrequency,
		ToneVolume:    tone.DefaultLevel,
		LogLevel:      "info",
	}
}
