// Package looptest provides a deterministic loop for tests.
package looptest

import (
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/morselive/internal/loop"
)

type timer struct {
	id       int
	at       time.Duration
	msg      any
	canceled bool
}

// Manual is a loop.Loop with a virtual clock. Posted messages queue up until
// Drain; timers fire only when Advance moves the clock past their deadline.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	queue  []any
	timers []*timer
	notify chan struct{}
}

// New returns an empty Manual loop at virtual time zero.
func New() *Manual {
	return &Manual{notify: make(chan struct{}, 1)}
}

// Post implements loop.Loop.
func (m *Manual) Post(msg any) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// After implements loop.Loop.
func (m *Manual) After(d time.Duration, msg any) loop.Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &timer{id: m.nextID, at: m.now + d, msg: msg}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		t.canceled = true
		m.mu.Unlock()
	}
}

// Advance moves the virtual clock forward and queues every timer that fired,
// in deadline order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var fired []*timer
	kept := m.timers[:0]
	for _, t := range m.timers {
		switch {
		case t.canceled:
		case t.at <= m.now:
			fired = append(fired, t)
		default:
			kept = append(kept, t)
		}
	}
	m.timers = kept
	sort.SliceStable(fired, func(i, j int) bool {
		if fired[i].at == fired[j].at {
			return fired[i].id < fired[j].id
		}
		return fired[i].at < fired[j].at
	})
	for _, t := range fired {
		m.queue = append(m.queue, t.msg)
	}
	m.mu.Unlock()
}

// Pending reports the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Drain returns and clears every queued message.
func (m *Manual) Drain() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.queue
	m.queue = nil
	return out
}

// Wait blocks until at least n messages are queued or the timeout elapses,
// then drains the queue. It exists for messages posted by real goroutines.
func (m *Manual) Wait(n int, timeout time.Duration) []any {
	deadline := time.Now().Add(timeout)
	var out []any
	for {
		out = append(out, m.Drain()...)
		if len(out) >= n {
			return out
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return out
		}
		select {
		case <-m.notify:
		case <-time.After(remaining):
		}
	}
}
