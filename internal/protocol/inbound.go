// Package protocol defines the JSON frames exchanged with the trainer device.
package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/bytedance/sonic"
)

// Inbound message kinds as sent by the device.
const (
	KindMorseElement = "morse_element"
	KindCharSent     = "char_sent"
	KindResult       = "result"
	KindSpeedChange  = "speed_change"
	KindSession      = "session"
	KindContextLost  = "context_lost"
	KindProbs        = "probs"
	KindStatus       = "status"
)

var (
	// ErrUnknownKind is returned for frames with an unrecognized type.
	ErrUnknownKind = errors.New("unknown message type")
	// ErrInvalid is returned when a frame lacks required fields.
	ErrInvalid = errors.New("invalid message")
)

var codec = sonic.ConfigDefault

// Inbound is one decoded device frame.
type Inbound interface {
	Kind() string
}

// MorseElement reports the key going down or up.
type MorseElement struct {
	On bool
}

// CharSent reports a character the device finished keying. An empty or blank
// character marks a word gap.
type CharSent struct {
	Char      string
	Pattern   string
	QueueDist int
}

// Result reports the outcome of one typed character.
type Result struct {
	Correct  bool
	Typed    string
	Expected string
	Prob     int
}

// Direction is the sense of a speed change. Set marks a change requested by
// the client rather than an adaptive one.
type Direction string

// Speed change directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
	Set  Direction = "set"
)

// SpeedChange reports an adaptive speed adjustment.
type SpeedChange struct {
	Speed     int
	Direction Direction
}

// Session reports the session starting or stopping. Speed is zero when the
// device omitted it.
type Session struct {
	Started bool
	Speed   int
}

// ContextLost reports that the trainee fell behind and speed was reduced.
type ContextLost struct {
	Speed int
}

// HeatmapEntry is the device's error probability for one character.
type HeatmapEntry struct {
	Char string  `json:"char"`
	Prob float64 `json:"prob"`
}

// Probs carries the probability table in display order.
type Probs struct {
	Data []HeatmapEntry
}

// Status is the authoritative snapshot of the device session.
type Status struct {
	Running    bool
	Speed      int
	Profile    int
	HasProfile bool
}

func (MorseElement) Kind() string { return KindMorseElement }
func (CharSent) Kind() string     { return KindCharSent }
func (Result) Kind() string       { return KindResult }
func (SpeedChange) Kind() string  { return KindSpeedChange }
func (Session) Kind() string      { return KindSession }
func (ContextLost) Kind() string  { return KindContextLost }
func (Probs) Kind() string        { return KindProbs }
func (Status) Kind() string       { return KindStatus }

// fields is one frame as generic JSON. Required fields are checked per kind;
// optional extras of an unexpected type are ignored.
type fields map[string]any

func (f fields) str(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

func (f fields) boolean(key string) (bool, bool) {
	v, ok := f[key].(bool)
	return v, ok
}

func (f fields) num(key string) (float64, bool) {
	v, ok := f[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (f fields) integer(key string) (int, bool) {
	v, ok := f.num(key)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

// Decode parses one text frame.
func Decode(frame []byte) (Inbound, error) {
	var f fields
	if err := codec.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	kind, _ := f.str("type")
	switch kind {
	case KindMorseElement:
		switch state, _ := f.str("state"); state {
		case "on":
			return MorseElement{On: true}, nil
		case "off":
			return MorseElement{On: false}, nil
		}
		return nil, invalid(kind, "state")
	case KindCharSent:
		msg := CharSent{}
		msg.Char, _ = f.str("char")
		msg.Pattern, _ = f.str("pattern")
		msg.QueueDist, _ = f.integer("queue_dist")
		return msg, nil
	case KindResult:
		correct, ok := f.boolean("correct")
		if !ok {
			return nil, invalid(kind, "correct")
		}
		typed, ok := f.str("typed")
		if !ok {
			return nil, invalid(kind, "typed")
		}
		msg := Result{Correct: correct, Typed: typed}
		msg.Expected, _ = f.str("expected")
		msg.Prob, _ = f.integer("prob")
		return msg, nil
	case KindSpeedChange:
		speed, ok := f.integer("speed")
		if !ok {
			return nil, invalid(kind, "speed")
		}
		dir, _ := f.str("direction")
		switch Direction(dir) {
		case Up, Down, Set:
		default:
			return nil, invalid(kind, "direction")
		}
		return SpeedChange{Speed: speed, Direction: Direction(dir)}, nil
	case KindSession:
		state, _ := f.str("state")
		if state != "started" && state != "stopped" {
			return nil, invalid(kind, "state")
		}
		msg := Session{Started: state == "started"}
		msg.Speed, _ = f.integer("speed")
		return msg, nil
	case KindContextLost:
		speed, ok := f.integer("speed")
		if !ok {
			return nil, invalid(kind, "speed")
		}
		return ContextLost{Speed: speed}, nil
	case KindProbs:
		raw, _ := f["data"].([]any)
		var data []HeatmapEntry
		for _, item := range raw {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, invalid(kind, "data")
			}
			entry := fields(obj)
			char, ok := entry.str("char")
			if !ok {
				return nil, invalid(kind, "char")
			}
			prob, ok := entry.num("prob")
			if !ok || prob < 0 {
				return nil, invalid(kind, "prob")
			}
			data = append(data, HeatmapEntry{Char: char, Prob: prob})
		}
		return Probs{Data: data}, nil
	case KindStatus:
		running, ok := f.boolean("running")
		if !ok {
			return nil, invalid(kind, "running")
		}
		speed, ok := f.integer("speed")
		if !ok {
			return nil, invalid(kind, "speed")
		}
		msg := Status{Running: running, Speed: speed}
		msg.Profile, msg.HasProfile = f.integer("profile")
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func invalid(kind, field string) error {
	return fmt.Errorf("%w: %s: missing or bad %q", ErrInvalid, kind, field)
}
