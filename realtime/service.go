package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akhkim/babel/audiocapture"
	"github.com/akhkim/babel/internal/types"
	"github.com/akhkim/babel/lang"
	"github.com/akhkim/babel/langdetect"
)

// frameSamples is 20 ms at 48 kHz, a valid Opus frame size.
const frameSamples = 960

// CaptureRate is the capture sample rate in realtime mode, fixed by the
// Opus uplink.
const CaptureRate = opusSampleRate

// Translator converts text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Config holds configuration for the realtime service. Immutable once
// created.
type Config struct {
	APIKey     string
	Model      string
	Prompt     string
	SourceLang string // "" or "auto" lets the server detect
	TargetLang string
	Device     audiocapture.Device
}

// Service drives one realtime session: a low-latency capture callback
// feeding the WebRTC uplink, and an event loop turning transcript
// events into subtitle line updates.
type Service struct {
	config     Config
	translator Translator

	client   *Client
	stream   *audiocapture.CallbackStream
	channels int

	running atomic.Bool
	count   atomic.Int64

	mu        sync.Mutex
	cancel    context.CancelFunc
	startTime time.Time

	lineChan chan types.SubtitleLine
	errChan  chan error

	// Interim transcript per active item ID.
	muItems sync.Mutex
	items   map[string]*itemState

	stereoBuf []float32
}

// itemState accumulates streamed transcript fragments for one item.
type itemState struct {
	ID   string
	Text string
}

// NewService creates a realtime service. The translator may be nil, in
// which case transcripts are emitted untranslated.
func NewService(cfg Config, translator Translator) *Service {
	return &Service{
		config:     cfg,
		translator: translator,
	}
}

// Start connects to the Realtime API and begins streaming from the
// configured device.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return fmt.Errorf("already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.startTime = time.Now()

	s.lineChan = make(chan types.SubtitleLine, 100)
	s.errChan = make(chan error, 10)
	s.items = make(map[string]*itemState)

	s.client = NewClient(ClientConfig{
		APIKey: s.config.APIKey,
		Session: SessionConfig{
			Model:    s.config.Model,
			Language: s.config.SourceLang,
			Prompt:   s.config.Prompt,
		},
	})
	s.client.OnDataChannelOpen(func() {
		if err := s.client.ConfigureVAD(TurnDetection{
			Type:      VADTypeSemanticVAD,
			Eagerness: VADEagernessHigh,
		}); err != nil {
			slog.Warn("configure VAD", "error", err)
		}
	})

	if err := s.client.Connect(ctx); err != nil {
		cancel()
		return fmt.Errorf("connect client: %w", err)
	}

	// The uplink is fixed at 48 kHz by WebRTC Opus.
	device := s.config.Device
	device.SampleRate = opusSampleRate

	s.channels = device.Channels
	if s.channels > opusChannels {
		s.channels = opusChannels
	}

	stream, err := audiocapture.OpenCallback(device, frameSamples, s.handleAudio)
	if err != nil {
		s.client.Close()
		cancel()
		return fmt.Errorf("open capture: %w", err)
	}
	s.stream = stream

	s.running.Store(true)
	go s.processEvents(ctx)

	slog.Info("realtime session started",
		"device", device.Name,
		"model", s.config.Model,
		"target", s.config.TargetLang)
	return nil
}

// Stop ends the session. Lines and Errors channels are closed once the
// event loop drains.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return nil
	}
	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
	stream, client := s.stream, s.client
	s.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	if client != nil {
		_ = client.Close()
	}
	return nil
}

// Close stops the service.
func (s *Service) Close() error {
	return s.Stop()
}

// Running reports whether a session is active.
func (s *Service) Running() bool {
	return s.running.Load()
}

// StartedAt returns when the current session started.
func (s *Service) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// LineCount returns how many final lines this session has emitted.
func (s *Service) LineCount() int {
	return int(s.count.Load())
}

// Lines returns the channel of subtitle line updates. Closed on Stop.
func (s *Service) Lines() <-chan types.SubtitleLine {
	return s.lineChan
}

// Errors returns the channel of session errors.
func (s *Service) Errors() <-chan error {
	return s.errChan
}

func (s *Service) handleAudio(samples []float32) {
	if s.channels == 1 {
		s.stereoBuf = upmixStereo(s.stereoBuf, samples)
		samples = s.stereoBuf
	}
	if err := s.client.SendAudio(samples); err != nil {
		slog.Warn("failed to send audio", "error", err)
	}
}

// upmixStereo duplicates mono samples into interleaved stereo, reusing
// dst when it has capacity.
func upmixStereo(dst, src []float32) []float32 {
	if cap(dst) < 2*len(src) {
		dst = make([]float32, 2*len(src))
	}
	dst = dst[:2*len(src)]
	for i, v := range src {
		dst[2*i] = v
		dst[2*i+1] = v
	}
	return dst
}

func (s *Service) processEvents(ctx context.Context) {
	defer func() {
		close(s.lineChan)
		close(s.errChan)
	}()

	for event := range s.client.Messages() {
		switch e := event.(type) {
		case SpeechStartedEvent:
			s.beginItem(e.ItemID)
		case TranscriptDeltaEvent:
			s.appendDelta(e.ItemID, e.Delta)
		case TranscriptEvent:
			s.finishItem(ctx, e.ItemID, e.Transcript)
		case ErrorEvent:
			s.sendError(fmt.Errorf("api error: %s (%s)", e.Error.Message, e.Error.Code))
		}
	}
}

func (s *Service) beginItem(id string) {
	s.muItems.Lock()
	s.items[id] = &itemState{ID: id}
	s.muItems.Unlock()
}

// appendDelta grows the interim transcript and emits a non-final update
// showing the source text while translation is pending.
func (s *Service) appendDelta(id, delta string) {
	s.muItems.Lock()
	item, ok := s.items[id]
	if !ok {
		item = &itemState{ID: id}
		s.items[id] = item
	}
	item.Text += delta
	text := item.Text
	s.muItems.Unlock()

	s.emit(types.SubtitleLine{
		ID:         id,
		Text:       text,
		SourceText: text,
		TargetLang: s.config.TargetLang,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// finishItem runs the final transcript through the language gate and
// the translator, then emits the final line update. A final update with
// empty text retracts a suppressed interim line.
func (s *Service) finishItem(ctx context.Context, id, transcript string) {
	s.muItems.Lock()
	item, ok := s.items[id]
	delete(s.items, id)
	s.muItems.Unlock()
	interim := ok && item.Text != ""

	text := strings.TrimSpace(transcript)
	if text == "" {
		if interim {
			s.retract(id)
		}
		return
	}

	sourceLang := s.config.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		detected, _ := langdetect.Detect(text)
		sourceLang = detected
		if detected != "" && lang.Match(detected, s.config.TargetLang) {
			slog.Debug("suppressing same-language transcript", "language", detected)
			if interim {
				s.retract(id)
			}
			return
		}
	}

	out := text
	if s.translator != nil {
		translated, err := s.translator.Translate(ctx, text, s.config.TargetLang)
		if err != nil {
			slog.Error("translate transcript", "error", err)
		} else if strings.TrimSpace(translated) != "" {
			out = translated
		}
	}

	s.count.Add(1)
	s.emit(types.SubtitleLine{
		ID:         id,
		Text:       out,
		SourceText: text,
		SourceLang: sourceLang,
		TargetLang: s.config.TargetLang,
		Final:      true,
		Timestamp:  time.Now().UnixMilli(),
	})
}

func (s *Service) retract(id string) {
	s.emit(types.SubtitleLine{
		ID:        id,
		Final:     true,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *Service) emit(line types.SubtitleLine) {
	select {
	case s.lineChan <- line:
	default:
		// Drop if full to avoid blocking the event loop.
	}
}

func (s *Service) sendError(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}
