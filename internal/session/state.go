// Package session mirrors the device's training session.
package session

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/morselive/internal/protocol"
)

// Window and feed bounds.
const (
	SentCharsMax = 40
	ResultsMax   = 50
	SpeedsMax    = 240
)

// State is the local mirror of the device session. Incremental events update
// individual fields; snapshots overwrite whatever they carry.
type State struct {
	Running   bool
	Speed     int
	Profile   int
	Correct   int
	Wrong     int
	SentChars Window
	Results   Feed
	StartedAt time.Time

	// Speeds lists every distinct speed reported since the last reset,
	// oldest first.
	Speeds []int

	// HideAnswers omits the expected character from error entries.
	HideAnswers bool
}

// New returns a stopped session at the given speed and profile.
func New(speed, profile int) *State {
	return &State{
		Speed:     speed,
		Profile:   profile,
		SentChars: Window{max: SentCharsMax},
		Results:   Feed{max: ResultsMax},
	}
}

// Reset zeroes the counters and clears the sent characters and result feed.
func (s *State) Reset() {
	s.Correct = 0
	s.Wrong = 0
	s.SentChars.Clear()
	s.Results.Clear()
	s.Speeds = nil
}

// Accuracy is the rounded percentage of correct results. ok is false until
// the first result arrives.
func (s *State) Accuracy() (pct int, ok bool) {
	total := s.Correct + s.Wrong
	if total == 0 {
		return 0, false
	}
	return int(math.Round(100 * float64(s.Correct) / float64(total))), true
}

// Elapsed is the time since the session started, or zero when stopped.
func (s *State) Elapsed(now time.Time) time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// ApplyResult counts one scored character and records it in the feed.
func (s *State) ApplyResult(msg protocol.Result) Entry {
	var e Entry
	if msg.Correct {
		s.Correct++
		e = Entry{Text: "OK: " + msg.Typed, Correct: true}
	} else {
		s.Wrong++
		text := "ERR: typed " + msg.Typed
		if !s.HideAnswers {
			text += ", expected " + msg.Expected
		}
		e = Entry{Text: text}
	}
	s.Results.Push(e)
	return e
}

// ApplyCharSent appends a keyed character, or a space for a word gap.
func (s *State) ApplyCharSent(msg protocol.CharSent) {
	r := ' '
	if runes := []rune(msg.Char); len(runes) > 0 {
		r = runes[0]
	}
	s.SentChars.Push(r)
}

// ApplySpeedChange records an adaptive speed change.
func (s *State) ApplySpeedChange(msg protocol.SpeedChange) Entry {
	s.setSpeed(msg.Speed)
	e := Entry{
		Text:    fmt.Sprintf("Speed %s to %d WPM", msg.Direction, msg.Speed),
		Correct: msg.Direction == protocol.Up,
	}
	s.Results.Push(e)
	return e
}

// ApplyContextLost records the device's automatic slowdown.
func (s *State) ApplyContextLost(msg protocol.ContextLost) Entry {
	s.setSpeed(msg.Speed)
	e := Entry{Text: fmt.Sprintf("Context lost! Speed down to %d WPM", msg.Speed)}
	s.Results.Push(e)
	return e
}

// ApplyStatus overwrites run state, speed and, when present, profile.
func (s *State) ApplyStatus(msg protocol.Status, now time.Time) {
	s.setRunning(msg.Running, now)
	s.setSpeed(msg.Speed)
	if msg.HasProfile {
		s.Profile = msg.Profile
	}
}

// ApplySessionStarted marks the session running. The device may omit the
// speed, in which case fallback, the locally requested speed, is shown.
func (s *State) ApplySessionStarted(speed, fallback int, now time.Time) {
	s.setRunning(true, now)
	if speed > 0 {
		s.setSpeed(speed)
	} else if fallback > 0 {
		s.setSpeed(fallback)
	}
}

// ApplySessionStopped marks the session stopped.
func (s *State) ApplySessionStopped() {
	s.setRunning(false, time.Time{})
}

func (s *State) setRunning(running bool, now time.Time) {
	switch {
	case running && !s.Running:
		s.StartedAt = now
	case !running:
		s.StartedAt = time.Time{}
	}
	s.Running = running
}

func (s *State) setSpeed(speed int) {
	s.Speed = speed
	if n := len(s.Speeds); n > 0 && s.Speeds[n-1] == speed {
		return
	}
	s.Speeds = append(s.Speeds, speed)
	if len(s.Speeds) > SpeedsMax {
		s.Speeds = s.Speeds[len(s.Speeds)-SpeedsMax:]
	}
}
