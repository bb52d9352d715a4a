package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

const (
	defaultWhisperAPIURL = "https://api.openai.com/v1/audio/transcriptions"
)

// WhisperAPI implements the Provider interface using OpenAI's Whisper API.
type WhisperAPI struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client

	mu    sync.RWMutex
	ready bool
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey  string
	BaseURL string // Optional, defaults to OpenAI's API
	Model   string // Optional, defaults to "whisper-1"
}

// NewWhisperAPI creates a new WhisperAPI provider.
func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWhisperAPIURL
	}

	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	return &WhisperAPI{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
		ready:   cfg.APIKey != "",
	}
}

func (w *WhisperAPI) Name() string        { return "whisper-api" }
func (w *WhisperAPI) DisplayName() string { return "OpenAI Whisper API" }
func (w *WhisperAPI) IsLocal() bool       { return false }
func (w *WhisperAPI) RequiresSetup() bool { return false }
func (w *WhisperAPI) SetupProgress() int  { return 100 }

func (w *WhisperAPI) IsReady() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

func (w *WhisperAPI) Setup(_ func(percent int)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ready = w.apiKey != ""
	if !w.ready {
		return fmt.Errorf("API key is required")
	}
	return nil
}

// Transcribe sends audio to the Whisper API for transcription.
// audio: PCM float32 samples at 16000 Hz
// language: source language code (empty for auto-detect)
func (w *WhisperAPI) Transcribe(ctx context.Context, audio []float32, language string, _ DecodeParams) (*Result, error) {
	if !w.IsReady() {
		return nil, fmt.Errorf("whisper-api is not ready: API key required")
	}

	wavData, err := float32ToWAV(audio, 16000)
	if err != nil {
		return nil, fmt.Errorf("convert to WAV: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	if err := writer.WriteField("model", w.model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}

	// The API treats an absent language field as auto-detect and rejects
	// an explicit "auto".
	if language != "" && language != "auto" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}

	// Request timestamps for segments.
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var apiResp whisperAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	// The API reports no confidence; assume high.
	result := &Result{
		Language:   apiResp.Language,
		Confidence: 1.0,
	}
	for _, seg := range apiResp.Segments {
		text := cleanTranscript(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{
			Text:  text,
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
		})
	}

	// Short clips sometimes come back with text but no segment list.
	if len(result.Segments) == 0 {
		if text := cleanTranscript(apiResp.Text); text != "" {
			result.Segments = []Segment{{Text: text}}
		}
	}

	return result, nil
}

func (w *WhisperAPI) Close() error {
	return nil
}

// whisperAPIResponse represents the Whisper API response.
type whisperAPIResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}
