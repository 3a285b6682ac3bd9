package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morselive/internal/protocol"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestSentCharsWindowIsFIFO(t *testing.T) {
	s := New(25, 1)
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, r := range alphabet + alphabet {
		s.ApplyCharSent(protocol.CharSent{Char: string(r)})
		require.LessOrEqual(t, s.SentChars.Len(), SentCharsMax)
	}
	full := alphabet + alphabet
	assert.Equal(t, full[len(full)-SentCharsMax:], s.SentChars.String())
}

func TestSentCharsGapsAreSpacesAndBounded(t *testing.T) {
	s := New(25, 1)
	s.ApplyCharSent(protocol.CharSent{Char: "A"})
	s.ApplyCharSent(protocol.CharSent{})
	s.ApplyCharSent(protocol.CharSent{Char: " "})
	s.ApplyCharSent(protocol.CharSent{Char: "B"})
	assert.Equal(t, "A  B", s.SentChars.String())

	for i := 0; i < 100; i++ {
		s.ApplyCharSent(protocol.CharSent{})
	}
	assert.Equal(t, strings.Repeat(" ", SentCharsMax), s.SentChars.String())
}

func TestResultFeedMostRecentFirstAndBounded(t *testing.T) {
	s := New(25, 1)
	for i := 0; i < 60; i++ {
		s.ApplyResult(protocol.Result{Correct: i%2 == 0, Typed: string(rune('A' + i%26)), Expected: "Q"})
		require.LessOrEqual(t, s.Results.Len(), ResultsMax)
	}
	entries := s.Results.Entries()
	require.Len(t, entries, ResultsMax)
	assert.Equal(t, "ERR: typed H, expected Q", entries[0].Text)
	assert.Equal(t, "OK: G", entries[1].Text)
	assert.Equal(t, 30, s.Correct)
	assert.Equal(t, 30, s.Wrong)
}

func TestResultCountsAndText(t *testing.T) {
	s := New(25, 1)
	_, ok := s.Accuracy()
	assert.False(t, ok)

	e := s.ApplyResult(protocol.Result{Correct: true, Typed: "A"})
	assert.Equal(t, Entry{Text: "OK: A", Correct: true}, e)
	assert.Equal(t, 1, s.Correct)

	s.ApplyResult(protocol.Result{Typed: "E", Expected: "I"})
	s.ApplyResult(protocol.Result{Correct: true, Typed: "T"})
	pct, ok := s.Accuracy()
	require.True(t, ok)
	assert.Equal(t, 67, pct)

	s.HideAnswers = true
	e = s.ApplyResult(protocol.Result{Typed: "M", Expected: "N"})
	assert.Equal(t, "ERR: typed M", e.Text)
}

func TestSnapshotWinsOverLocalBelief(t *testing.T) {
	s := New(20, 1)
	s.ApplySpeedChange(protocol.SpeedChange{Speed: 22, Direction: protocol.Up})
	s.ApplyStatus(protocol.Status{Running: true, Speed: 15}, t0)
	assert.Equal(t, 15, s.Speed)
	assert.True(t, s.Running)
	assert.Equal(t, 1, s.Profile, "absent profile is left untouched")

	s.ApplyStatus(protocol.Status{Running: false, Speed: 30, Profile: 4, HasProfile: true}, t0)
	assert.False(t, s.Running)
	assert.Equal(t, 30, s.Speed)
	assert.Equal(t, 4, s.Profile)
}

func TestSessionStartStop(t *testing.T) {
	s := New(20, 1)
	s.ApplySessionStarted(0, 28, t0)
	assert.True(t, s.Running)
	assert.Equal(t, 28, s.Speed)
	assert.Equal(t, time.Minute, s.Elapsed(t0.Add(time.Minute)))

	s.ApplySessionStarted(31, 28, t0.Add(time.Second))
	assert.Equal(t, 31, s.Speed)
	assert.Equal(t, t0, s.StartedAt, "repeat start keeps the original start time")

	s.ApplySessionStopped()
	assert.False(t, s.Running)
	assert.Zero(t, s.Elapsed(t0.Add(time.Hour)))
}

func TestSpeedEventsFeedEntries(t *testing.T) {
	s := New(25, 1)
	up := s.ApplySpeedChange(protocol.SpeedChange{Speed: 27, Direction: protocol.Up})
	assert.Equal(t, Entry{Text: "Speed up to 27 WPM", Correct: true}, up)
	down := s.ApplySpeedChange(protocol.SpeedChange{Speed: 23, Direction: protocol.Down})
	assert.Equal(t, Entry{Text: "Speed down to 23 WPM"}, down)
	lost := s.ApplyContextLost(protocol.ContextLost{Speed: 21})
	assert.Equal(t, Entry{Text: "Context lost! Speed down to 21 WPM"}, lost)
	set := s.ApplySpeedChange(protocol.SpeedChange{Speed: 30, Direction: protocol.Set})
	assert.Equal(t, Entry{Text: "Speed set to 30 WPM"}, set)
	assert.Equal(t, 30, s.Speed)
	assert.Equal(t, 4, s.Results.Len())
}

func TestResetClearsCountersOnly(t *testing.T) {
	s := New(25, 2)
	s.ApplyStatus(protocol.Status{Running: true, Speed: 33}, t0)
	s.ApplyResult(protocol.Result{Correct: true, Typed: "A"})
	s.ApplyCharSent(protocol.CharSent{Char: "A"})
	s.Reset()
	assert.Zero(t, s.Correct)
	assert.Zero(t, s.Wrong)
	assert.Zero(t, s.SentChars.Len())
	assert.Zero(t, s.Results.Len())
	assert.True(t, s.Running)
	assert.Equal(t, 33, s.Speed)
}

func TestSpeedsRecordDistinctReports(t *testing.T) {
	s := New(25, 1)
	assert.Empty(t, s.Speeds, "the configured speed is not a report")
	s.ApplySessionStarted(25, 25, t0)
	s.ApplyStatus(protocol.Status{Running: true, Speed: 25}, t0)
	s.ApplySpeedChange(protocol.SpeedChange{Speed: 27, Direction: protocol.Up})
	s.ApplyContextLost(protocol.ContextLost{Speed: 23})
	assert.Equal(t, []int{25, 27, 23}, s.Speeds)

	for i := 0; i < SpeedsMax+10; i++ {
		s.ApplySpeedChange(protocol.SpeedChange{Speed: 20 + i%2, Direction: protocol.Up})
	}
	assert.Len(t, s.Speeds, SpeedsMax)
	s.Reset()
	assert.Empty(t, s.Speeds)
}
