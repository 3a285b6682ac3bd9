package tone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/morselive/internal/loop/looptest"
)

func newTestKeyer(t *testing.T) (*Keyer, *Engine, *looptest.Manual) {
	t.Helper()
	eng := NewEngine(func() (Graph, error) { return &fakeGraph{}, nil }, zaptest.NewLogger(t))
	require.NoError(t, eng.Prime())
	lp := looptest.New()
	return NewKeyer(eng, lp), eng, lp
}

// step advances the clock and feeds every fired timer back to the keyer.
func step(t *testing.T, k *Keyer, lp *looptest.Manual, d time.Duration) {
	t.Helper()
	lp.Advance(d)
	for _, msg := range lp.Drain() {
		require.True(t, k.Handle(msg))
	}
}

func TestDotDuration(t *testing.T) {
	assert.Equal(t, 60*time.Millisecond, DotDuration(20))
	assert.Equal(t, 48*time.Millisecond, DotDuration(25))
}

func TestKeyerPlaysPatternTiming(t *testing.T) {
	k, eng, lp := newTestKeyer(t)
	dot := DotDuration(20)

	k.Play(".-", 20)
	assert.Equal(t, Sounding, eng.State())
	step(t, k, lp, dot)
	assert.Equal(t, Idle, eng.State(), "gap after the dot")
	step(t, k, lp, dot)
	assert.Equal(t, Sounding, eng.State(), "dash")
	step(t, k, lp, 2*dot)
	assert.Equal(t, Sounding, eng.State(), "dash lasts three dots")
	step(t, k, lp, dot)
	assert.Equal(t, Idle, eng.State())
	assert.True(t, k.Busy(), "character gap still pending")
	step(t, k, lp, 3*dot)
	assert.False(t, k.Busy())
	assert.Zero(t, lp.Pending())
}

func TestKeyerQueuesBehindCurrentPattern(t *testing.T) {
	k, eng, lp := newTestKeyer(t)
	dot := DotDuration(20)

	k.Play(".", 20)
	k.Play("-", 20)
	assert.Equal(t, 1, lp.Pending(), "one timer at a time")
	step(t, k, lp, dot)
	assert.Equal(t, Idle, eng.State())
	step(t, k, lp, 3*dot)
	assert.Equal(t, Sounding, eng.State(), "second pattern after the character gap")
}

func TestKeyerStopSilencesAndIgnoresStaleTimers(t *testing.T) {
	k, eng, lp := newTestKeyer(t)

	k.Play("--", 20)
	require.Equal(t, Sounding, eng.State())
	k.Stop()
	assert.Equal(t, Idle, eng.State())
	assert.False(t, k.Busy())
	assert.Zero(t, lp.Pending())

	assert.True(t, k.Handle(keyerMsg{seq: 1}), "stale timer is consumed")
	assert.Equal(t, Idle, eng.State())
	assert.False(t, k.Handle("other"))
}

func TestKeyerIgnoresEmptyInput(t *testing.T) {
	k, eng, lp := newTestKeyer(t)
	k.Play("", 20)
	k.Play(" /", 20)
	k.Play(".", 0)
	assert.False(t, k.Busy())
	assert.Equal(t, Idle, eng.State())
	assert.Zero(t, lp.Pending())
}
