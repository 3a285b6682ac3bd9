package tone

import (
	"time"

	"github.com/verte-zerg/morselive/internal/loop"
)

// keyerBacklog caps queued elements so a stalled loop cannot grow the queue
// without bound. Patterns arriving while it is full are skipped.
const keyerBacklog = 256

type keyerStep struct {
	on   bool
	hold time.Duration
}

type keyerMsg struct {
	seq uint64
}

// Keyer plays dot/dash patterns on an Engine using loop timers, for devices
// that report whole characters rather than key transitions. Patterns queue
// behind each other with a character gap in between.
type Keyer struct {
	engine *Engine
	loop   loop.Loop
	steps  []keyerStep
	seq    uint64
	cancel loop.Cancel
}

// NewKeyer returns an idle keyer driving engine.
func NewKeyer(engine *Engine, l loop.Loop) *Keyer {
	return &Keyer{engine: engine, loop: l}
}

// DotDuration is the length of one dot at wpm, using the PARIS standard.
func DotDuration(wpm int) time.Duration {
	return 1200 * time.Millisecond / time.Duration(wpm)
}

// Play queues pattern at wpm. Characters other than '.' and '-' are ignored.
func (k *Keyer) Play(pattern string, wpm int) {
	if wpm <= 0 {
		return
	}
	dot := DotDuration(wpm)
	var steps []keyerStep
	for _, r := range pattern {
		switch r {
		case '.':
			steps = append(steps, keyerStep{on: true, hold: dot})
		case '-':
			steps = append(steps, keyerStep{on: true, hold: 3 * dot})
		default:
			continue
		}
		steps = append(steps, keyerStep{hold: dot})
	}
	if len(steps) == 0 || len(k.steps)+len(steps) > keyerBacklog {
		return
	}
	steps[len(steps)-1].hold = 3 * dot
	idle := !k.Busy()
	k.steps = append(k.steps, steps...)
	if idle {
		k.next()
	}
}

// Busy reports whether a pattern is playing or queued.
func (k *Keyer) Busy() bool {
	return k.cancel != nil || len(k.steps) > 0
}

// Handle applies a keyer timer message. It reports whether msg was one.
func (k *Keyer) Handle(msg any) bool {
	m, ok := msg.(keyerMsg)
	if !ok {
		return false
	}
	if m.seq == k.seq {
		k.cancel = nil
		k.next()
	}
	return true
}

// Stop drops everything queued and releases the tone if an element is
// sounding.
func (k *Keyer) Stop() {
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
	k.seq++
	k.steps = nil
	k.engine.Off()
}

func (k *Keyer) next() {
	if len(k.steps) == 0 {
		return
	}
	s := k.steps[0]
	k.steps = k.steps[1:]
	if s.on {
		k.engine.On()
	} else {
		k.engine.Off()
	}
	k.seq++
	k.cancel = k.loop.After(s.hold, keyerMsg{seq: k.seq})
}
