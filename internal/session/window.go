package session

// Window keeps the most recent characters, oldest dropped first.
type Window struct {
	runes []rune
	max   int
}

// Push appends r and evicts from the front past the bound.
func (w *Window) Push(r rune) {
	w.runes = append(w.runes, r)
	if w.max > 0 && len(w.runes) > w.max {
		w.runes = append(w.runes[:0], w.runes[len(w.runes)-w.max:]...)
	}
}

// Clear empties the window.
func (w *Window) Clear() {
	w.runes = w.runes[:0]
}

// Len returns the number of characters held.
func (w *Window) Len() int {
	return len(w.runes)
}

// String returns the characters oldest first.
func (w *Window) String() string {
	return string(w.runes)
}

// Entry is one line of the result feed.
type Entry struct {
	Text    string
	Correct bool
}

// Feed holds result entries most recent first.
type Feed struct {
	entries []Entry
	max     int
}

// Push inserts e at the front and evicts the oldest past the bound.
func (f *Feed) Push(e Entry) {
	f.entries = append(f.entries, Entry{})
	copy(f.entries[1:], f.entries)
	f.entries[0] = e
	if f.max > 0 && len(f.entries) > f.max {
		f.entries = f.entries[:f.max]
	}
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.entries = f.entries[:0]
}

// Len returns the number of entries.
func (f *Feed) Len() int {
	return len(f.entries)
}

// Entries returns a copy of the entries, most recent first.
func (f *Feed) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}
