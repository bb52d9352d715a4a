// Package app wires configuration, audio capture, transcription,
// translation, and the overlay bridge into running subtitle sessions.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/akhkim/babel/audiocapture"
	"github.com/akhkim/babel/cache"
	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/internal/types"
	"github.com/akhkim/babel/pipeline"
	"github.com/akhkim/babel/realtime"
	"github.com/akhkim/babel/server"
	"github.com/akhkim/babel/stt"
)

// ErrSessionRunning is returned by StartSession while a session is
// already active.
var ErrSessionRunning = errors.New("a session is already running")

// Service is the application core shared by all commands. It owns the
// configuration, the translation cache, the transcriber registry, and
// the overlay bridge, plus the active session when one is running.
type Service struct {
	version string

	cfg      *config.Config
	cache    *cache.Cache
	registry *stt.Registry
	bridge   *server.Bridge
	sink     LineSink

	mu          sync.Mutex
	audioUp     bool
	device      audiocapture.Device
	rate        int
	chunked     *pipeline.Session
	stream      *audiocapture.Stream
	rt          *realtime.Service
	transcriber string
	translator  string
	startedAt   time.Time

	lines atomic.Int64
}

// New creates an uninitialized service. Call Init before anything else.
func New(version string) *Service {
	return &Service{version: version}
}

// Init loads the configuration and builds the long-lived components:
// translation cache, transcriber registry, output sinks, and the
// overlay bridge. The bridge is constructed but not yet listening.
func (s *Service) Init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return s.InitWith(cfg)
}

// InitWith is Init with a caller-supplied configuration, for commands
// that override settings before the components are built.
func (s *Service) InitWith(cfg *config.Config) error {
	s.cfg = cfg

	s.setupCache()

	s.registry = stt.NewRegistry()
	if err := registerTranscribers(s.registry, cfg); err != nil {
		return err
	}

	s.bridge = server.New(cfg.OverlayAddr, s.Status)

	sinks := multiSink{s.bridge}
	if cfg.Console {
		sinks = append(sinks, consoleSink{})
	}
	if cfg.Clipboard {
		sinks = append(sinks, clipboardSink{})
	}
	s.sink = sinks
	return nil
}

// setupCache opens the persistent translation cache. Failure disables
// caching but never blocks startup.
func (s *Service) setupCache() {
	if !s.cfg.CacheEnabled {
		return
	}

	dir := s.cfg.CacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			slog.Warn("translation cache disabled", "error", err)
			return
		}
		dir = filepath.Join(base, "babel", "translations")
	}

	c, err := cache.New(dir)
	if err != nil {
		slog.Warn("translation cache disabled", "error", err)
		return
	}
	s.cache = c
}

// Config returns the loaded configuration for commands to inspect or
// override before a session starts.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Version returns the build version string.
func (s *Service) Version() string {
	return s.version
}

// StartOverlay begins serving the subtitle overlay endpoints. The
// bridge outlives individual sessions.
func (s *Service) StartOverlay() error {
	return s.bridge.Start()
}

// OverlayAddr reports the address the overlay bridge serves on.
func (s *Service) OverlayAddr() string {
	return s.bridge.Addr()
}

// StartSession resolves the capture device and providers from the
// current configuration and starts a session in the configured mode.
func (s *Service) StartSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked() {
		return ErrSessionRunning
	}
	cfg := s.cfg

	translator, err := buildTranslator(cfg, s.cache)
	if err != nil {
		return err
	}

	if !s.audioUp {
		if err := audiocapture.Initialize(); err != nil {
			return fmt.Errorf("initialize audio: %w", err)
		}
		s.audioUp = true
	}

	dev, err := audiocapture.Resolve(cfg.Device)
	if err != nil {
		return fmt.Errorf("resolve capture device: %w", err)
	}

	xlate := &translateAdapter{inner: translator, source: cfg.SourceLang}

	switch cfg.Mode {
	case "realtime":
		err = s.startRealtimeLocked(ctx, dev, xlate)
	default:
		err = s.startChunkedLocked(ctx, dev, xlate)
	}
	if err != nil {
		return err
	}

	s.device = dev
	s.translator = translator.Name()
	s.startedAt = time.Now()
	s.lines.Store(0)

	slog.Info("session started",
		"mode", cfg.Mode,
		"device", dev.Name,
		"source", cfg.SourceLang,
		"target", cfg.TargetLang,
	)
	return nil
}

func (s *Service) startChunkedLocked(ctx context.Context, dev audiocapture.Device, xlate *translateAdapter) error {
	cfg := s.cfg

	prov, err := buildTranscriber(s.registry, cfg)
	if err != nil {
		return err
	}

	rate := cfg.SampleRate
	if rate <= 0 {
		rate = dev.SampleRate
	}
	if rate <= 0 {
		rate = pipeline.DefaultCaptureRate
	}
	dev.SampleRate = rate

	stream, err := audiocapture.Open(dev, pipeline.FrameCount(cfg.ChunkSeconds, rate))
	if err != nil {
		return fmt.Errorf("open capture stream: %w", err)
	}

	source := cfg.SourceLang
	if source == "auto" {
		source = ""
	}
	s.chunked = pipeline.Start(ctx, pipeline.Config{
		TargetLang:   cfg.TargetLang,
		SourceLang:   source,
		Threshold:    cfg.Threshold,
		Model:        cfg.WhisperModel,
		ChunkSeconds: cfg.ChunkSeconds,
		MaxQueueSize: cfg.QueueSize,
		ClearDelay:   cfg.ClearDelayDuration(),
	}, stream, rate, prov, xlate, &sessionSink{
		svc:    s,
		source: cfg.SourceLang,
		target: cfg.TargetLang,
	})
	s.stream = stream
	s.rate = rate
	s.transcriber = prov.Name()
	return nil
}

func (s *Service) startRealtimeLocked(ctx context.Context, dev audiocapture.Device, xlate *translateAdapter) error {
	cfg := s.cfg

	key := cfg.APIKey("realtime")
	if key == "" {
		return errors.New("realtime mode needs an OpenAI API key (set OPENAI_API_KEY)")
	}

	rt := realtime.NewService(realtime.Config{
		APIKey:     key,
		Model:      cfg.RealtimeModel,
		Prompt:     cfg.SystemPrompt,
		SourceLang: cfg.SourceLang,
		TargetLang: cfg.TargetLang,
		Device:     dev,
	}, xlate)
	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("start realtime session: %w", err)
	}

	s.rt = rt
	s.rate = realtime.CaptureRate
	s.transcriber = "realtime"
	go s.forwardRealtime(rt)
	return nil
}

// forwardRealtime drains the realtime service channels into the sink
// fan-out until the session stops.
func (s *Service) forwardRealtime(rt *realtime.Service) {
	var wg sync.WaitGroup

	wg.Go(func() {
		for line := range rt.Lines() {
			s.publishLine(line)
		}
	})
	wg.Go(func() {
		for err := range rt.Errors() {
			slog.Error("realtime session error", "error", err)
		}
	})
	wg.Wait()
}

// StopSession tears down the active session, if any, and clears the
// overlay. Stopping an idle service is a no-op.
func (s *Service) StopSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopSessionLocked()
}

func (s *Service) stopSessionLocked() error {
	if !s.activeLocked() {
		return nil
	}
	var firstErr error

	// Closing the stream first unblocks the capture worker from its
	// device read so the join below does not time out.
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			firstErr = err
		}
		s.stream = nil
	}
	if s.chunked != nil {
		s.chunked.Stop()
		s.chunked = nil
	}
	if s.rt != nil {
		if err := s.rt.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.rt = nil
	}

	s.sink.Clear()
	slog.Info("session stopped", "lines", s.lines.Load())
	return firstErr
}

// Toggle stops the running session or starts a new one. Bound to the
// global hotkey.
func (s *Service) Toggle(ctx context.Context) error {
	if s.SessionActive() {
		return s.StopSession()
	}
	return s.StartSession(ctx)
}

// SessionActive reports whether a session is currently running.
func (s *Service) SessionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Service) activeLocked() bool {
	return s.chunked != nil || s.rt != nil
}

// Status snapshots the service state for the status endpoint and CLI.
func (s *Service) Status() types.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := types.SessionStatus{
		Mode:       s.cfg.Mode,
		SourceLang: s.cfg.SourceLang,
		TargetLang: s.cfg.TargetLang,
		Translator: s.translator,
		LineCount:  int(s.lines.Load()),
	}
	if s.activeLocked() {
		st.Active = true
		st.Device = s.device.Name
		st.SampleRate = s.rate
		st.Transcriber = s.transcriber
		st.Duration = int64(time.Since(s.startedAt).Seconds())
	}
	return st
}

// Transcribers describes the registered transcription providers, sorted
// by name.
func (s *Service) Transcribers() []types.TranscriberInfo {
	if s.registry == nil {
		return nil
	}

	providers := s.registry.List()
	infos := make([]types.TranscriberInfo, len(providers))
	for i, p := range providers {
		infos[i] = types.TranscriberInfo{
			Name:          p.Name(),
			DisplayName:   p.DisplayName(),
			IsLocal:       p.IsLocal(),
			RequiresSetup: p.RequiresSetup(),
			SetupProgress: p.SetupProgress(),
			IsReady:       p.IsReady(),
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ReloadConfig installs a freshly loaded configuration. An active
// session keeps the settings it started with.
func (s *Service) ReloadConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	if s.activeLocked() {
		slog.Info("configuration reloaded, takes effect on the next session")
	}
}

// Shutdown stops any session and releases every long-lived component.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	stopErr := s.stopSessionLocked()
	audioUp := s.audioUp
	s.audioUp = false
	s.mu.Unlock()

	if s.bridge != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.bridge.Shutdown(ctx); err != nil {
			slog.Warn("overlay shutdown failed", "error", err)
		}
	}
	if audioUp {
		if err := audiocapture.Terminate(); err != nil {
			slog.Warn("audio teardown failed", "error", err)
		}
	}
	if s.registry != nil {
		if err := s.registry.Close(); err != nil {
			slog.Warn("transcriber close failed", "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Warn("cache close failed", "error", err)
		}
	}
	return stopErr
}

// publishLine counts finished lines and fans the update out to every
// sink.
func (s *Service) publishLine(line types.SubtitleLine) {
	if line.Final && line.Text != "" {
		s.lines.Add(1)
	}
	s.sink.Publish(line)
}

// sessionSink adapts worker callbacks to the sink fan-out, stamping
// each finished chunk with an ID and the session languages.
type sessionSink struct {
	svc    *Service
	source string
	target string
}

func (ss *sessionSink) OnNewLine(text string) {
	ss.svc.publishLine(types.SubtitleLine{
		ID:         uuid.NewString(),
		Text:       text,
		SourceLang: ss.source,
		TargetLang: ss.target,
		Final:      true,
		Timestamp:  time.Now().UnixMilli(),
	})
}

func (ss *sessionSink) OnClearOverlay() {
	ss.svc.sink.Clear()
}
