package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/hotkey"
	"github.com/akhkim/babel/internal/app"
)

var (
	runDevice      string
	runSource      string
	runTarget      string
	runMode        string
	runThreshold   float64
	runModel       string
	runTranscriber string
	runTranslator  string
	runOverlayAddr string
	runClipboard   bool
	runNoConsole   bool
	runNoHotkey    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture system audio and translate it live",
	Long: `Starts a translation session with the configured capture device and
providers. Finished lines are printed to the console and broadcast to
connected overlay clients; the global hotkey toggles the session on
and off without quitting.

Flags override the stored configuration for this invocation only.

Examples:
  babel run                          # defaults from the config file
  babel run --target ko              # translate into Korean
  babel run --device "blackhole"     # pick a capture device by name
  babel run --mode realtime          # low-latency OpenAI Realtime mode`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runDevice, "device", "d", "", "capture device index, name fragment, or \"auto\"")
	f.StringVarP(&runSource, "source", "s", "", "source language code or \"auto\"")
	f.StringVarP(&runTarget, "target", "t", "", "target language code")
	f.StringVarP(&runMode, "mode", "m", "", "session mode: chunked or realtime")
	f.Float64Var(&runThreshold, "threshold", 0, "peak amplitude below which a chunk is skipped")
	f.StringVar(&runModel, "model", "", "whisper model size for chunked mode")
	f.StringVar(&runTranscriber, "transcriber", "", "speech-to-text provider")
	f.StringVar(&runTranslator, "translator", "", "translation provider")
	f.StringVar(&runOverlayAddr, "overlay-addr", "", "overlay listen address")
	f.BoolVar(&runClipboard, "clipboard", false, "copy each finished line to the clipboard")
	f.BoolVar(&runNoConsole, "no-console", false, "do not print lines to stdout")
	f.BoolVar(&runNoHotkey, "no-hotkey", false, "do not register the global toggle hotkey")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := app.New(Version)

	// Flag overrides must land before Init builds the sinks and
	// registry from the config.
	preloaded, err := config.Load()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, preloaded)
	if err := svc.InitWith(preloaded); err != nil {
		return err
	}

	cfg := svc.Config()
	if logLevelFlag == "" {
		logLevel.Set(cfg.SlogLevel())
	}

	if err := svc.StartOverlay(); err != nil {
		return err
	}
	if err := svc.StartSession(ctx); err != nil {
		_ = svc.Shutdown()
		return err
	}

	var keys *hotkey.Listener
	if !runNoHotkey && cfg.Hotkey != "" {
		keys = setupHotkey(ctx, svc, cfg.Hotkey)
	}

	stopWatch, err := config.Watch(func(next *config.Config) {
		if logLevelFlag == "" {
			logLevel.Set(next.SlogLevel())
		}
		svc.ReloadConfig(next)
	})
	if err != nil {
		slog.Warn("config watch disabled", "error", err)
	} else {
		defer stopWatch()
	}

	slog.Info("overlay ready", "addr", svc.OverlayAddr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	if keys != nil {
		keys.Stop()
	}
	return svc.Shutdown()
}

// setupHotkey registers the session toggle. Hotkey failures never stop
// the session, some environments simply have no global hook support.
func setupHotkey(ctx context.Context, svc *app.Service, combo string) *hotkey.Listener {
	keys, err := hotkey.New(combo, func() {
		if err := svc.Toggle(ctx); err != nil {
			slog.Error("hotkey toggle failed", "error", err)
		}
	})
	if err != nil {
		slog.Warn("hotkey disabled", "combo", combo, "error", err)
		return nil
	}
	keys.Start()
	return keys
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("device") {
		cfg.Device = runDevice
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceLang = runSource
	}
	if cmd.Flags().Changed("target") {
		cfg.TargetLang = runTarget
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = runMode
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = runThreshold
	}
	if cmd.Flags().Changed("model") {
		cfg.WhisperModel = runModel
	}
	if cmd.Flags().Changed("transcriber") {
		cfg.STTProvider = runTranscriber
	}
	if cmd.Flags().Changed("translator") {
		cfg.Translator = runTranslator
	}
	if cmd.Flags().Changed("overlay-addr") {
		cfg.OverlayAddr = runOverlayAddr
	}
	if cmd.Flags().Changed("clipboard") {
		cfg.Clipboard = runClipboard
	}
	if cmd.Flags().Changed("no-console") {
		cfg.Console = !runNoConsole
	}
}
