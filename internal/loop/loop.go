// Package loop abstracts the single event loop that owns all client state.
//
// Component state is only ever mutated by the goroutine that drains the loop.
// Goroutines doing blocking work (dialing, reading frames) and timers hand
// their results back with Post; the loop then applies them in arrival order.
package loop

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Cancel stops a pending timer. It is safe to call more than once and after
// the timer has fired.
type Cancel func()

// Loop delivers messages to the event loop.
type Loop interface {
	// Post hands msg to the loop. Messages from a single goroutine are
	// delivered in the order they were posted. Post must not be called from
	// the loop goroutine itself.
	Post(msg any)
	// After posts msg once d has elapsed unless the returned Cancel runs first.
	After(d time.Duration, msg any) Cancel
}

// TeaLoop delivers messages through a Bubble Tea program.
type TeaLoop struct {
	mu      sync.Mutex
	program *tea.Program
}

// Bind attaches the program. Messages posted before Bind are dropped.
func (l *TeaLoop) Bind(p *tea.Program) {
	l.mu.Lock()
	l.program = p
	l.mu.Unlock()
}

// Post implements Loop.
func (l *TeaLoop) Post(msg any) {
	l.mu.Lock()
	p := l.program
	l.mu.Unlock()
	if p == nil {
		return
	}
	p.Send(msg)
}

// After implements Loop.
func (l *TeaLoop) After(d time.Duration, msg any) Cancel {
	return afterFunc(d, func() { l.Post(msg) })
}

// Queue is a channel-backed loop for headless use.
type Queue struct {
	ch chan any
}

// NewQueue returns a Queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size < 0 {
		size = 0
	}
	return &Queue{ch: make(chan any, size)}
}

// Post implements Loop.
func (q *Queue) Post(msg any) {
	q.ch <- msg
}

// After implements Loop.
func (q *Queue) After(d time.Duration, msg any) Cancel {
	return afterFunc(d, func() { q.Post(msg) })
}

// Next blocks until a message arrives or ctx is done.
func (q *Queue) Next(ctx context.Context) (any, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func afterFunc(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
