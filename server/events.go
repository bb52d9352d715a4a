package server

import (
	"encoding/json"

	"github.com/akhkim/babel/internal/types"
)

// Event types pushed to overlay clients.
const (
	EventLine  = "line"
	EventClear = "clear"
)

// lineEvent is a subtitle line update on the wire. Embedding flattens
// the line fields next to the type tag.
type lineEvent struct {
	Type string `json:"type"`
	types.SubtitleLine
}

// clearEvent tells clients to empty the overlay.
type clearEvent struct {
	Type string `json:"type"`
}

func marshalLine(line types.SubtitleLine) []byte {
	data, _ := json.Marshal(lineEvent{Type: EventLine, SubtitleLine: line})
	return data
}

func marshalClear() []byte {
	data, _ := json.Marshal(clearEvent{Type: EventClear})
	return data
}
