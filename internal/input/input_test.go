package input

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeyOnly(t *testing.T) {
	for _, r := range "abcxyzABC0189" + Punctuation {
		got, ok := Normalize(r, KeyOnly)
		require.True(t, ok, "%q", r)
		assert.Equal(t, unicode.ToUpper(r), got)
	}
	for _, r := range " ;#$%*<>[]_~é\t" {
		_, ok := Normalize(r, KeyOnly)
		assert.False(t, ok, "%q", r)
	}
	got, ok := Normalize('q', KeyOnly)
	assert.True(t, ok)
	assert.Equal(t, 'Q', got)
}

func TestNormalizeFreeText(t *testing.T) {
	for _, r := range " ;#$%*<>" {
		got, ok := Normalize(r, FreeText)
		require.True(t, ok, "%q", r)
		assert.Equal(t, r, got)
	}
	for _, r := range "[]_~{}é\t" {
		_, ok := Normalize(r, FreeText)
		assert.False(t, ok, "%q", r)
	}
}

func TestGate(t *testing.T) {
	keys := Gate{Mode: KeyOnly}
	_, ok := keys.Accept('a', true, true)
	assert.False(t, ok, "focused form field swallows keys")
	r, ok := keys.Accept('a', false, false)
	assert.True(t, ok, "key mode sends while stopped")
	assert.Equal(t, 'A', r)

	free := Gate{Mode: FreeText}
	_, ok = free.Accept('a', false, false)
	assert.False(t, ok)
	r, ok = free.Accept(' ', false, true)
	assert.True(t, ok)
	assert.Equal(t, ' ', r)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("FREE")
	require.NoError(t, err)
	assert.Equal(t, FreeText, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, KeyOnly, m)
	_, err = ParseMode("chord")
	assert.Error(t, err)
}

func TestKeyboardLayersAndActivate(t *testing.T) {
	var k Keyboard
	r, ok := k.Activate()
	require.True(t, ok)
	assert.Equal(t, 'Q', r)

	k.Move(0, -1)
	r, _ = k.Activate()
	assert.Equal(t, 'P', r)

	k.Move(-1, 0)
	assert.True(t, k.OnToggle())
	assert.Equal(t, "123", k.ToggleLabel())
	_, ok = k.Activate()
	assert.False(t, ok)
	assert.Equal(t, LayerNumeric, k.Layer())
	assert.Equal(t, "ABC", k.ToggleLabel())

	k.Move(1, 0)
	k.Move(0, 9)
	r, ok = k.Activate()
	require.True(t, ok)
	assert.Equal(t, '0', r)

	k.Move(2, 0)
	r, _ = k.Activate()
	assert.Equal(t, '&', r, "column clamps to the shorter row")
}

func TestKeyboardCoversPunctuation(t *testing.T) {
	var k Keyboard
	k.Toggle()
	seen := ""
	for _, row := range k.Rows()[1:] {
		seen += string(row)
	}
	assert.ElementsMatch(t, []rune(Punctuation), []rune(seen))
}
