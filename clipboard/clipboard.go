// Package clipboard copies text to the system clipboard through
// platform tools: pbcopy on macOS, clip on Windows, xclip/xsel/wl-copy
// elsewhere.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoTool is returned when no clipboard tool is installed.
var ErrNoTool = errors.New("no clipboard tool found (install xclip, xsel, or wl-copy)")

// linuxTools are tried in order on non-darwin, non-windows systems.
var linuxTools = [][]string{
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"wl-copy"},
}

// Copy writes text to the system clipboard. Copying nothing is a no-op.
func Copy(text string) error {
	if text == "" {
		return nil
	}

	argv, err := commandFor(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// commandFor picks the clipboard tool argv for the platform. lookPath
// resolves tool availability.
func commandFor(goos string, lookPath func(string) (string, error)) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "windows":
		return []string{"clip"}, nil
	default:
		for _, tool := range linuxTools {
			if _, err := lookPath(tool[0]); err == nil {
				return tool, nil
			}
		}
		return nil, ErrNoTool
	}
}
