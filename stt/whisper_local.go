package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

// WhisperLocal implements the Provider interface with a local whisper.cpp
// install. It shells out to the whisper CLI per chunk and parses its JSON
// output.
type WhisperLocal struct {
	modelPath string
	modelSize string // "tiny", "base", "small", "medium", "large"
	binPath   string // Path to the whisper CLI binary

	mu            sync.RWMutex
	ready         bool
	hasBinary     bool
	setupProgress int
}

// WhisperLocalConfig holds configuration for WhisperLocal.
type WhisperLocalConfig struct {
	ModelSize string // "tiny", "base", "small", "medium", "large"
	ModelDir  string // Directory to store models
	BinPath   string // Path to the whisper CLI binary (optional, discovered if not set)
}

// Model sizes and their approximate download sizes.
var modelSizes = map[string]struct {
	URL  string
	Size int64
}{
	"tiny":   {"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin", 75 * 1024 * 1024},
	"base":   {"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin", 150 * 1024 * 1024},
	"small":  {"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin", 500 * 1024 * 1024},
	"medium": {"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin", 1500 * 1024 * 1024},
	"large":  {"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin", 3000 * 1024 * 1024},
}

// ModelSizes returns the valid model size names in ascending size order.
func ModelSizes() []string {
	names := make([]string, 0, len(modelSizes))
	for name := range modelSizes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return modelSizes[names[i]].Size < modelSizes[names[j]].Size
	})
	return names
}

// NewWhisperLocal creates a new WhisperLocal provider.
func NewWhisperLocal(cfg WhisperLocalConfig) (*WhisperLocal, error) {
	if cfg.ModelSize == "" {
		cfg.ModelSize = "base"
	}

	if _, ok := modelSizes[cfg.ModelSize]; !ok {
		return nil, fmt.Errorf("invalid model size: %s", cfg.ModelSize)
	}

	if cfg.ModelDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.ModelDir = filepath.Join(homeDir, ".babel", "models")
	}

	w := &WhisperLocal{
		modelSize:     cfg.ModelSize,
		modelPath:     filepath.Join(cfg.ModelDir, fmt.Sprintf("ggml-%s.bin", cfg.ModelSize)),
		binPath:       cfg.BinPath,
		setupProgress: -1,
	}

	if binPath := w.findWhisperBinary(); binPath != "" {
		w.hasBinary = true
		w.binPath = binPath
	}

	// Ready only if both binary and model exist.
	if _, err := os.Stat(w.modelPath); err == nil && w.hasBinary {
		w.ready = true
		w.setupProgress = 100
	}

	return w, nil
}

func (w *WhisperLocal) Name() string { return "whisper-local" }
func (w *WhisperLocal) DisplayName() string {
	if !w.HasBinary() {
		return fmt.Sprintf("Whisper Local (%s) [whisper.cpp not installed]", w.modelSize)
	}
	return fmt.Sprintf("Whisper Local (%s)", w.modelSize)
}
func (w *WhisperLocal) IsLocal() bool       { return true }
func (w *WhisperLocal) RequiresSetup() bool { return !w.IsReady() }

// HasBinary returns true if a whisper CLI binary was found.
func (w *WhisperLocal) HasBinary() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasBinary
}

func (w *WhisperLocal) IsReady() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

func (w *WhisperLocal) SetupProgress() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.setupProgress
}

// Setup downloads the whisper model if needed.
func (w *WhisperLocal) Setup(progress func(percent int)) error {
	w.mu.Lock()
	if w.ready {
		w.mu.Unlock()
		return nil
	}
	w.setupProgress = 0
	w.mu.Unlock()

	modelInfo, ok := modelSizes[w.modelSize]
	if !ok {
		return fmt.Errorf("unknown model size: %s", w.modelSize)
	}

	if err := os.MkdirAll(filepath.Dir(w.modelPath), 0755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	if err := w.downloadModel(modelInfo.URL, modelInfo.Size, progress); err != nil {
		return fmt.Errorf("download model: %w", err)
	}

	w.mu.Lock()
	w.ready = w.hasBinary
	w.setupProgress = 100
	w.mu.Unlock()

	if progress != nil {
		progress(100)
	}

	return nil
}

func (w *WhisperLocal) downloadModel(url string, expectedSize int64, progress func(percent int)) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	// Download to a temp file and rename, so a partial download never
	// looks like a usable model.
	tmpPath := w.modelPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	var downloaded int64
	buf := make([]byte, 32*1024)
	lastProgress := 0

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write file: %w", werr)
			}
			downloaded += int64(n)

			if expectedSize > 0 && progress != nil {
				pct := int(downloaded * 100 / expectedSize)
				if pct > lastProgress {
					lastProgress = pct
					w.mu.Lock()
					w.setupProgress = pct
					w.mu.Unlock()
					progress(pct)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmpPath, w.modelPath); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}

// Transcribe converts audio samples to text using local whisper.cpp.
// audio: PCM float32 samples at 16000 Hz
// language: source language code (empty for auto-detect)
func (w *WhisperLocal) Transcribe(ctx context.Context, audio []float32, language string, params DecodeParams) (*Result, error) {
	if !w.IsReady() {
		return nil, fmt.Errorf("whisper-local is not ready: model not downloaded")
	}

	wavData, err := float32ToWAV(audio, 16000)
	if err != nil {
		return nil, fmt.Errorf("convert to WAV: %w", err)
	}

	audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("babel_chunk_%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(audioPath, wavData, 0644); err != nil {
		return nil, fmt.Errorf("write audio file: %w", err)
	}
	defer os.Remove(audioPath)

	binPath := w.binPath
	if binPath == "" {
		binPath = w.findWhisperBinary()
	}
	if binPath == "" {
		return nil, fmt.Errorf("whisper CLI binary not found, please install whisper.cpp")
	}

	// The CLI has no standalone VAD mode without an extra VAD model, so
	// VADFilter/MinSilenceMS are left to the caller's amplitude gate.
	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-oj",
		"--no-prints",
	}
	if params.BeamSize > 0 {
		args = append(args, "-bs", strconv.Itoa(params.BeamSize))
	}
	if !params.ConditionOnPrevious {
		args = append(args, "--no-context")
	}
	if language != "" {
		args = append(args, "-l", language)
	}

	cmd := exec.CommandContext(ctx, binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper CLI failed: %w, stderr: %s", err, stderr.String())
	}

	return parseWhisperOutput(stdout.Bytes(), language), nil
}

// parseWhisperOutput converts whisper.cpp JSON into a Result. Output that
// is not valid JSON is treated as a plain-text transcript.
func parseWhisperOutput(out []byte, language string) *Result {
	var parsed whisperCppOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		result := &Result{Language: language, Confidence: 0.8}
		if text := cleanTranscript(string(out)); text != "" {
			result.Segments = []Segment{{Text: text}}
		}
		return result
	}

	// The CLI reports no confidence; assume high for a successful decode.
	result := &Result{
		Language:   parsed.Result.Language,
		Confidence: 0.9,
	}
	for _, seg := range parsed.Transcription {
		text := cleanTranscript(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{
			Text:  text,
			Start: time.Duration(seg.Offsets.From) * time.Millisecond,
			End:   time.Duration(seg.Offsets.To) * time.Millisecond,
		})
	}
	return result
}

func (w *WhisperLocal) findWhisperBinary() string {
	// Common binary names; whisper-cli is the Homebrew name.
	names := []string{"whisper-cli", "whisper-cpp", "whisper", "main"}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	homeDir, _ := os.UserHomeDir()
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, "whisper.cpp"),
	}

	for _, loc := range locations {
		for _, name := range names {
			path := filepath.Join(loc, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

func (w *WhisperLocal) Close() error {
	return nil
}

// whisperCppOutput represents the JSON output from whisper.cpp.
type whisperCppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}
