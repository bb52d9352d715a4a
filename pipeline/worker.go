// Package pipeline implements the streaming audio-to-subtitle core: a
// capture worker and a processing worker joined by a bounded chunk queue,
// with backpressure-by-drop on the producer side and a silence-driven
// overlay clear on the consumer side.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/akhkim/babel/lang"
	"github.com/akhkim/babel/stt"
)

// DefaultCaptureRate is assumed when the queue was never stamped.
const DefaultCaptureRate = 48000

// Config is the immutable per-session configuration shared by the worker
// pair. A new session requires a fresh Config and a fresh pair of workers;
// there is no in-place reconfiguration.
type Config struct {
	TargetLang   string        // Translation target code
	SourceLang   string        // Transcription source code, empty for auto-detect
	Threshold    float64       // Silence gate, linear amplitude in [0.001, 0.1]
	Model        string        // Transcription model identifier
	ChunkSeconds float64       // Capture chunk duration
	MaxQueueSize int           // Queue capacity
	PollTimeout  time.Duration // Consumer dequeue wait
	ClearDelay   time.Duration // Silence before the overlay clears
}

func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.ChunkSeconds == 0 {
		c.ChunkSeconds = DefaultChunkSeconds
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.ClearDelay == 0 {
		c.ClearDelay = DefaultClearDelay
	}
	return c
}

// StopFlag is the shared cooperative shutdown signal. It is set exactly
// once; both workers poll it between operations and never interrupt an
// in-flight read or transcription.
type StopFlag struct {
	flag atomic.Bool
}

// Set requests shutdown.
func (s *StopFlag) Set() { s.flag.Store(true) }

// Stopped reports whether shutdown was requested.
func (s *StopFlag) Stopped() bool { return s.flag.Load() }

// Transcriber is the speech service consumed by the processing worker.
// Implementations receive mono float32 audio at ModelSampleRate.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []float32, language string, params stt.DecodeParams) (*stt.Result, error)
}

// Translator is the translation service consumed by the processing worker.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Sink receives display updates. Both signals are fire-and-forget; the
// sink marshals them onto whatever context it renders from.
type Sink interface {
	OnNewLine(text string)
	OnClearOverlay()
}

// Outcome identifies which branch one processing iteration took.
type Outcome int

const (
	OutcomeIdle               Outcome = iota // queue empty, silence window not elapsed
	OutcomeCleared                           // queue empty, overlay clear emitted
	OutcomeSilenceSkip                       // peak below threshold, chunk dropped
	OutcomeEmptyTranscript                   // transcription produced no text
	OutcomeLanguageSuppressed                // already in the target language
	OutcomeEmitted                           // line delivered to the sink
	OutcomeError                             // per-chunk failure, loop continues
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeCleared:
		return "cleared"
	case OutcomeSilenceSkip:
		return "silence-skip"
	case OutcomeEmptyTranscript:
		return "empty-transcript"
	case OutcomeLanguageSuppressed:
		return "language-suppressed"
	case OutcomeEmitted:
		return "emitted"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// Worker is the transcription/translation half of the pipeline. It owns
// its transcriber and translator handles exclusively for its lifetime.
type Worker struct {
	cfg   Config
	queue *ChunkQueue
	stop  *StopFlag
	trans Transcriber
	xlate Translator
	sink  Sink

	// resampleRatio is derived from the queue's stamped rate on the first
	// chunk and reused; the capture rate cannot change mid-session.
	resampleRatio float64
	lastSpeech    time.Time

	now  func() time.Time // test hook
	done chan struct{}
}

// NewWorker creates the processing worker. The silence clock starts at
// construction so a fresh session does not clear the overlay immediately.
func NewWorker(cfg Config, queue *ChunkQueue, stop *StopFlag, trans Transcriber, xlate Translator, sink Sink) *Worker {
	return &Worker{
		cfg:        cfg.withDefaults(),
		queue:      queue,
		stop:       stop,
		trans:      trans,
		xlate:      xlate,
		sink:       sink,
		lastSpeech: time.Now(),
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Run executes the processing loop until the stop flag is set. Per-chunk
// failures are logged and skipped; nothing propagates to the caller.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	slog.Info("processing worker started",
		"target", w.cfg.TargetLang, "source", w.cfg.SourceLang, "model", w.cfg.Model)

	for !w.stop.Stopped() {
		if outcome := w.Step(ctx); outcome != OutcomeIdle {
			slog.Debug("chunk processed", "outcome", outcome)
		}
	}
	slog.Info("processing worker stopped")
}

// Step runs one iteration of the processing loop and reports which branch
// it took. Exposed so the state machine can be exercised directly.
func (w *Worker) Step(ctx context.Context) Outcome {
	chunk, ok := w.queue.Dequeue(w.cfg.PollTimeout)
	if !ok {
		// The poll timeout is the only path that can clear the overlay.
		if w.now().Sub(w.lastSpeech) > w.cfg.ClearDelay {
			w.sink.OnClearOverlay()
			w.lastSpeech = w.now() // reset to prevent repeated clearing
			return OutcomeCleared
		}
		return OutcomeIdle
	}

	outcome, err := w.process(ctx, chunk)
	if err != nil {
		slog.Error("process chunk", "error", err)
	}
	return outcome
}

func (w *Worker) process(ctx context.Context, chunk []float32) (Outcome, error) {
	peak := float64(Peak(chunk))
	if peak < w.cfg.Threshold {
		// Too quiet. Not speech, so the silence clock keeps running.
		return OutcomeSilenceSkip, nil
	}

	audio := w.preprocess(chunk)

	result, err := w.trans.Transcribe(ctx, audio, w.cfg.SourceLang, stt.DefaultDecodeParams())
	if err != nil {
		return OutcomeError, fmt.Errorf("transcribe: %w", err)
	}

	text := result.Text()
	if text == "" {
		// No content found. Deliberately does not refresh the silence
		// clock, matching the quiet-chunk case: near-miss audio can still
		// trigger a clear shortly after.
		return OutcomeEmptyTranscript, nil
	}

	if w.cfg.SourceLang == "" && lang.Match(result.Language, w.cfg.TargetLang) {
		// Speech is already in the target language: treat it as valid
		// speech for the clear timer, but emit nothing.
		w.lastSpeech = w.now()
		return OutcomeLanguageSuppressed, nil
	}

	out, err := w.xlate.Translate(ctx, text, w.cfg.TargetLang)
	if err != nil {
		// Degrade to the untranslated transcript rather than losing the
		// utterance.
		slog.Warn("translate failed, emitting transcript", "error", err)
		out = text
	}

	w.lastSpeech = w.now()
	w.sink.OnNewLine(out)
	return OutcomeEmitted, nil
}

// preprocess resamples the chunk to the model rate and peak-normalizes it.
func (w *Worker) preprocess(chunk []float32) []float32 {
	if w.resampleRatio == 0 {
		rate := w.queue.SampleRate()
		if rate <= 0 {
			rate = DefaultCaptureRate
		}
		w.resampleRatio = float64(ModelSampleRate) / float64(rate)
	}

	audio := chunk
	if w.resampleRatio != 1 {
		audio = Resample(audio, w.resampleRatio)
	}
	Normalize(audio, NormalizePeak)
	return audio
}

// Join waits up to timeout for the loop to exit after the stop flag was
// set. A false return means the worker is still running; callers log it
// and move on.
func (w *Worker) Join(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
