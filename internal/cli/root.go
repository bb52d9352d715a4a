// Package cli implements the babel command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logLevelFlag string

// logLevel is shared with the config watcher so a reload can adjust
// verbosity without restarting.
var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:   "babel",
	Short: "Live subtitle translation for system audio",
	Long: `Babel captures system audio, transcribes it with Whisper or the
OpenAI Realtime API, translates the text, and serves the result as
subtitles to overlay clients over WebSocket.

Point a browser overlay or OBS source at ws://127.0.0.1:8737/ws to
display the subtitles.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log verbosity: debug, info, warn, error (default from config)")
}

func setupLogging() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if logLevelFlag != "" {
		logLevel.Set(parseLevel(logLevelFlag))
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
