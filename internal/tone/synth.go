package tone

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"
)

// SampleRate of rendered PCM.
const SampleRate = 44100

type automation struct {
	start  float64
	target float64
	tau    float64
}

// Synth is a software Graph: a continuous-phase sine oscillator through an
// automated gain stage, rendered as signed 16-bit little-endian mono PCM.
// Rendering and automation calls may come from different goroutines.
type Synth struct {
	mu      sync.Mutex
	rate    float64
	frames  int64
	phase   float64
	freq    float64
	gain    float64
	active  automation
	pending []automation
}

// NewSynth returns a silent synth at DefaultFrequency.
func NewSynth() *Synth {
	return &Synth{rate: SampleRate, freq: DefaultFrequency, active: automation{tau: TimeConstant}}
}

// CurrentTime implements Graph. It is the time of the next rendered sample.
func (s *Synth) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.frames) / s.rate
}

// SetFrequency implements Graph.
func (s *Synth) SetFrequency(hz float64) {
	s.mu.Lock()
	s.freq = hz
	s.mu.Unlock()
}

// CancelScheduledValues implements Graph.
func (s *Synth) CancelScheduledValues(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pending[:0]
	for _, a := range s.pending {
		if a.start < t {
			kept = append(kept, a)
		}
	}
	s.pending = kept
}

// SetTargetAtTime implements Graph.
func (s *Synth) SetTargetAtTime(target, start, timeConstant float64) {
	if timeConstant <= 0 {
		timeConstant = TimeConstant
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, automation{start: start, target: target, tau: timeConstant})
	sort.SliceStable(s.pending, func(i, j int) bool { return s.pending[i].start < s.pending[j].start })
}

// Scheduled reports automation events not yet reached by rendering.
func (s *Synth) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Gain returns the gain at the current render position.
func (s *Synth) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

// Close implements Graph.
func (s *Synth) Close() error {
	return nil
}

// Render fills buf with PCM frames, two bytes each, and advances the clock.
func (s *Synth) Render(buf []byte) int {
	n := len(buf) / 2
	s.mu.Lock()
	defer s.mu.Unlock()
	step := 2 * math.Pi * s.freq / s.rate
	for i := 0; i < n; i++ {
		t := float64(s.frames) / s.rate
		for len(s.pending) > 0 && s.pending[0].start <= t {
			s.active = s.pending[0]
			s.pending = s.pending[1:]
		}
		s.gain += (s.active.target - s.gain) * (1 - math.Exp(-1/(s.rate*s.active.tau)))
		sample := math.Sin(s.phase) * s.gain
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(sample*math.MaxInt16)))
		s.frames++
	}
	return n * 2
}
