package stt

import (
	"testing"
	"time"
)

func TestParseWhisperOutput(t *testing.T) {
	t.Run("json segments", func(t *testing.T) {
		raw := []byte(`{
			"result": {"language": "es"},
			"transcription": [
				{"text": " Hola,", "offsets": {"from": 0, "to": 1500}},
				{"text": " mundo.", "offsets": {"from": 1500, "to": 3000}}
			]
		}`)
		result := parseWhisperOutput(raw, "")
		if result.Language != "es" {
			t.Errorf("Language = %q, want \"es\"", result.Language)
		}
		if len(result.Segments) != 2 {
			t.Fatalf("segments = %d, want 2", len(result.Segments))
		}
		if result.Segments[0].Text != "Hola," {
			t.Errorf("segment 0 = %q, want \"Hola,\"", result.Segments[0].Text)
		}
		if result.Segments[1].Start != 1500*time.Millisecond {
			t.Errorf("segment 1 start = %v, want 1.5s", result.Segments[1].Start)
		}
		if got := result.Text(); got != "Hola, mundo." {
			t.Errorf("Text() = %q, want \"Hola, mundo.\"", got)
		}
	})

	t.Run("artifact-only segments dropped", func(t *testing.T) {
		raw := []byte(`{
			"result": {"language": "en"},
			"transcription": [{"text": " [BLANK_AUDIO]", "offsets": {"from": 0, "to": 3000}}]
		}`)
		result := parseWhisperOutput(raw, "")
		if len(result.Segments) != 0 {
			t.Errorf("segments = %d, want 0", len(result.Segments))
		}
		if got := result.Text(); got != "" {
			t.Errorf("Text() = %q, want empty", got)
		}
	})

	t.Run("plain text fallback", func(t *testing.T) {
		result := parseWhisperOutput([]byte("hello from the decoder\n"), "en")
		if result.Language != "en" {
			t.Errorf("Language = %q, want the hinted \"en\"", result.Language)
		}
		if got := result.Text(); got != "hello from the decoder" {
			t.Errorf("Text() = %q, want the raw line", got)
		}
	})

	t.Run("empty plain text", func(t *testing.T) {
		result := parseWhisperOutput([]byte("  \n"), "")
		if len(result.Segments) != 0 {
			t.Errorf("segments = %d, want 0", len(result.Segments))
		}
	})
}

func TestModelSizes(t *testing.T) {
	sizes := ModelSizes()
	if len(sizes) != 5 {
		t.Fatalf("len = %d, want 5", len(sizes))
	}
	if sizes[0] != "tiny" || sizes[len(sizes)-1] != "large" {
		t.Errorf("order = %v, want tiny first and large last", sizes)
	}
}

func TestNewWhisperLocal_InvalidSize(t *testing.T) {
	if _, err := NewWhisperLocal(WhisperLocalConfig{ModelSize: "huge"}); err == nil {
		t.Error("NewWhisperLocal(huge) succeeded, want error")
	}
}

func TestNewWhisperLocal_Defaults(t *testing.T) {
	w, err := NewWhisperLocal(WhisperLocalConfig{ModelDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewWhisperLocal: %v", err)
	}
	if w.Name() != "whisper-local" {
		t.Errorf("Name() = %q, want \"whisper-local\"", w.Name())
	}
	if !w.IsLocal() {
		t.Error("IsLocal() = false, want true")
	}
	// A fresh temp dir never holds a model.
	if w.IsReady() {
		t.Error("IsReady() = true with no model on disk")
	}
}
