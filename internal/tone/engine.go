// Package tone turns key-down/key-up events into a click-free sidetone.
package tone

import (
	"fmt"

	"go.uber.org/zap"
)

// Envelope and pitch defaults.
const (
	TimeConstant     = 0.005
	DefaultLevel     = 0.5
	DefaultFrequency = 800
	MinFrequency     = 300
	MaxFrequency     = 2400
)

// Graph is an oscillator feeding a gain stage whose value can be automated in
// the style of Web Audio AudioParams. Times are in seconds on the graph clock.
type Graph interface {
	CurrentTime() float64
	SetFrequency(hz float64)
	// CancelScheduledValues removes gain changes starting at or after t.
	CancelScheduledValues(t float64)
	// SetTargetAtTime approaches target exponentially from start onwards.
	SetTargetAtTime(target, start, timeConstant float64)
	Close() error
}

// Factory creates the graph on first use.
type Factory func() (Graph, error)

// State is the engine lifecycle state.
type State int

// Engine states.
const (
	Uninitialized State = iota
	Idle
	Sounding
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Idle:
		return "idle"
	case Sounding:
		return "sounding"
	default:
		return "unknown"
	}
}

// Engine owns the single graph for the life of the client. It is not safe for
// concurrent use; call it from the loop goroutine.
type Engine struct {
	factory  Factory
	log      *zap.Logger
	graph    Graph
	state    State
	level    float64
	freq     float64
	failed   bool
	disposed bool
}

// NewEngine returns an uninitialized engine. The graph is built lazily.
func NewEngine(factory Factory, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		factory: factory,
		log:     logger,
		level:   DefaultLevel,
		freq:    DefaultFrequency,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Frequency returns the oscillator pitch in Hz.
func (e *Engine) Frequency() float64 {
	return e.freq
}

// SetFrequency clamps hz to the supported range and retunes the oscillator.
func (e *Engine) SetFrequency(hz float64) {
	if hz < MinFrequency {
		hz = MinFrequency
	}
	if hz > MaxFrequency {
		hz = MaxFrequency
	}
	e.freq = hz
	if e.graph != nil {
		e.graph.SetFrequency(hz)
	}
}

// SetLevel sets the sounding gain, clamped to [0,1].
func (e *Engine) SetLevel(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	e.level = level
	if e.state == Sounding {
		e.ramp(level)
	}
}

// Prime builds the graph from a user action. It retries after an earlier
// failure, which On does not.
func (e *Engine) Prime() error {
	e.failed = false
	return e.init()
}

// On starts the tone.
func (e *Engine) On() {
	if e.state == Uninitialized && !e.failed {
		if err := e.init(); err != nil {
			e.log.Warn("tone unavailable", zap.Error(err))
		}
	}
	if e.state == Uninitialized {
		return
	}
	e.ramp(e.level)
	e.state = Sounding
}

// Off releases the tone. It is a no-op unless sounding.
func (e *Engine) Off() {
	if e.state != Sounding {
		return
	}
	e.ramp(0)
	e.state = Idle
}

// ForceOff silences the tone whatever the prior state, for session stops and
// connection loss.
func (e *Engine) ForceOff() {
	if e.state == Uninitialized {
		return
	}
	e.ramp(0)
	e.state = Idle
}

// Dispose silences and releases the graph. The engine cannot be reused.
func (e *Engine) Dispose() error {
	e.disposed = true
	if e.graph == nil {
		return nil
	}
	e.ForceOff()
	err := e.graph.Close()
	e.graph = nil
	e.state = Uninitialized
	return err
}

func (e *Engine) init() error {
	if e.state != Uninitialized {
		return nil
	}
	if e.disposed {
		return fmt.Errorf("tone engine disposed")
	}
	if e.factory == nil {
		e.failed = true
		return fmt.Errorf("no audio output configured")
	}
	g, err := e.factory()
	if err != nil {
		e.failed = true
		return fmt.Errorf("init audio: %w", err)
	}
	g.SetFrequency(e.freq)
	g.SetTargetAtTime(0, g.CurrentTime(), TimeConstant)
	e.graph = g
	e.state = Idle
	return nil
}

// ramp replaces any pending gain change with one smoothed approach to target.
func (e *Engine) ramp(target float64) {
	now := e.graph.CurrentTime()
	e.graph.CancelScheduledValues(now)
	e.graph.SetTargetAtTime(target, now, TimeConstant)
}
