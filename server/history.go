package server

import (
	"sync"

	"github.com/akhkim/babel/internal/types"
)

// DefaultHistorySize is how many final lines are kept for replay.
const DefaultHistorySize = 20

// History keeps the most recent final lines so a client connecting
// mid-session can catch up.
type History struct {
	mu    sync.Mutex
	lines []types.SubtitleLine
	max   int
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add records a line update. Only final lines with text are kept; a
// final empty line removes any recorded line with the same ID.
func (h *History) Add(line types.SubtitleLine) {
	if !line.Final {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if line.Text == "" {
		for i, l := range h.lines {
			if l.ID == line.ID {
				h.lines = append(h.lines[:i], h.lines[i+1:]...)
				return
			}
		}
		return
	}

	for i, l := range h.lines {
		if l.ID == line.ID {
			h.lines[i] = line
			return
		}
	}

	h.lines = append(h.lines, line)
	if len(h.lines) > h.max {
		h.lines = h.lines[len(h.lines)-h.max:]
	}
}

// Clear wipes the history.
func (h *History) Clear() {
	h.mu.Lock()
	h.lines = nil
	h.mu.Unlock()
}

// Snapshot returns the recorded lines, oldest first.
func (h *History) Snapshot() []types.SubtitleLine {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.SubtitleLine, len(h.lines))
	copy(out, h.lines)
	return out
}

// Len returns how many lines are recorded.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lines)
}
