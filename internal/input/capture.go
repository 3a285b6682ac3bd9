// Package input normalizes key presses into characters the device scores.
package input

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode selects the accepted alphabet.
type Mode int

// Input modes.
const (
	// KeyOnly accepts letters, digits and the keyer punctuation set.
	KeyOnly Mode = iota
	// FreeText additionally accepts space and every character the device
	// can score, '!' through 'Z'.
	FreeText
)

// Punctuation is the keyer punctuation set.
const Punctuation = `+-.,/:=?()"'@!&`

// Device scoring range.
const (
	FirstChar = '!'
	LastChar  = 'Z'
)

func (m Mode) String() string {
	switch m {
	case KeyOnly:
		return "keys"
	case FreeText:
		return "free"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as used in flags and config.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keys":
		return KeyOnly, nil
	case "free":
		return FreeText, nil
	default:
		return KeyOnly, fmt.Errorf("unknown input mode %q (want keys or free)", s)
	}
}

// Normalize upper-cases r and reports whether the mode accepts it.
func Normalize(r rune, mode Mode) (rune, bool) {
	r = unicode.ToUpper(r)
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r, true
	case strings.ContainsRune(Punctuation, r):
		return r, true
	}
	if mode == FreeText && (r == ' ' || (r >= FirstChar && r <= LastChar)) {
		return r, true
	}
	return 0, false
}

// Gate decides whether a physical key press is forwarded.
type Gate struct {
	Mode Mode
}

// Accept reports whether r should be sent, given whether a form field has
// focus and whether the session is running.
func (g Gate) Accept(r rune, formFocused, running bool) (rune, bool) {
	if formFocused {
		return 0, false
	}
	if g.Mode == FreeText && !running {
		return 0, false
	}
	return Normalize(r, g.Mode)
}
