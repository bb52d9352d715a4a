// Package hotkey binds a global keyboard shortcut to an action, used
// to toggle the capture session without focusing the terminal.
package hotkey

import (
	"fmt"
	"log/slog"
	"strings"

	hook "github.com/robotn/gohook"
)

// DefaultCombo toggles the session when no shortcut is configured.
const DefaultCombo = "ctrl+shift+space"

// Listener watches for one global key combination.
type Listener struct {
	keys   []string
	action func()
	done   chan struct{}
}

// ParseCombo splits a shortcut like "ctrl+shift+space" into key names.
func ParseCombo(combo string) ([]string, error) {
	combo = strings.ToLower(strings.TrimSpace(combo))
	if combo == "" {
		return nil, fmt.Errorf("empty hotkey")
	}

	parts := strings.Split(combo, "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("invalid hotkey %q", combo)
		}
		keys = append(keys, part)
	}
	return keys, nil
}

// New creates a listener that invokes action on every press of combo.
func New(combo string, action func()) (*Listener, error) {
	keys, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	return &Listener{
		keys:   keys,
		action: action,
		done:   make(chan struct{}),
	}, nil
}

// Start registers the hook and begins listening. Only one listener may
// run per process.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(hook.Event) {
		slog.Debug("hotkey pressed", "keys", l.keys)
		l.action()
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
		close(l.done)
	}()

	slog.Info("global hotkey registered", "combo", strings.Join(l.keys, "+"))
}

// Stop tears down the hook and waits for the event loop to exit.
func (l *Listener) Stop() {
	hook.End()
	<-l.done
}
