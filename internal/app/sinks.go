package app

import (
	"fmt"
	"log/slog"

	"github.com/akhkim/babel/clipboard"
	"github.com/akhkim/babel/internal/types"
)

// LineSink receives finished subtitle lines and overlay clear requests.
// Publish is called from worker goroutines; implementations must not
// block.
type LineSink interface {
	Publish(line types.SubtitleLine)
	Clear()
}

// multiSink fans every line out to all configured outputs.
type multiSink []LineSink

func (m multiSink) Publish(line types.SubtitleLine) {
	for _, s := range m {
		s.Publish(line)
	}
}

func (m multiSink) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

// consoleSink prints final lines to stdout. Interim lines and
// retractions are skipped so the terminal log stays append-only.
type consoleSink struct{}

func (consoleSink) Publish(line types.SubtitleLine) {
	if !line.Final || line.Text == "" {
		return
	}
	fmt.Println(line.Text)
}

func (consoleSink) Clear() {}

// clipboardSink copies each final line to the system clipboard,
// replacing the previous one.
type clipboardSink struct{}

func (clipboardSink) Publish(line types.SubtitleLine) {
	if !line.Final || line.Text == "" {
		return
	}
	if err := clipboard.Copy(line.Text); err != nil {
		slog.Warn("clipboard copy failed", "error", err)
	}
}

func (clipboardSink) Clear() {}
