// Package tui provides a Bubble Tea terminal UI for one seat of a duel.
package tui

import "strings"

// History recalls previously entered duel input with the up and down keys.
//
// Input is stored normalized (lowercase, single spaces). Repeat words and
// exit commands are not recorded, and re-entering a line moves it to the
// newest position instead of storing it twice.
type History struct {
	ring   []string
	start  int // index of the oldest entry in ring
	n      int
	cursor int // -1 when not navigating, else 0..n-1 counted from oldest
}

// NewHistory creates a history that keeps the newest size entries.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{ring: make([]string, size), cursor: -1}
}

// Len returns the number of recorded entries.
func (h *History) Len() int { return h.n }

// Push records input and resets navigation.
func (h *History) Push(input string) {
	h.cursor = -1
	line := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if !recordable(line) {
		return
	}
	if i := h.index(line); i >= 0 {
		h.remove(i)
	}
	if h.n == len(h.ring) {
		h.start = (h.start + 1) % len(h.ring)
		h.n--
	}
	h.ring[(h.start+h.n)%len(h.ring)] = line
	h.n++
}

// Prev moves toward older entries, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if h.n == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = h.n - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next moves toward newer entries. Past the newest it returns ("", false)
// and navigation ends.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.n {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor ends navigation.
func (h *History) ResetCursor() {
	h.cursor = -1
}

func recordable(line string) bool {
	switch line {
	case "", "again", "g", "/quit", "/exit":
		return false
	}
	return true
}

func (h *History) at(i int) string {
	return h.ring[(h.start+i)%len(h.ring)]
}

func (h *History) index(line string) int {
	for i := 0; i < h.n; i++ {
		if h.at(i) == line {
			return i
		}
	}
	return -1
}

// remove drops entry i, shifting newer entries down.
func (h *History) remove(i int) {
	for ; i < h.n-1; i++ {
		h.ring[(h.start+i)%len(h.ring)] = h.at(i + 1)
	}
	h.n--
}
