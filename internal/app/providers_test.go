package app

import (
	"context"
	"strings"
	"testing"

	"github.com/akhkim/babel/cache"
	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/stt"
	"github.com/akhkim/babel/translate"
)

// clearKeyEnv blanks every API key variable so tests see only what they
// set themselves.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestBuildTranslatorGoogle(t *testing.T) {
	cfg := config.Default()
	cfg.Translator = "google"
	cfg.CacheEnabled = false

	tr, err := buildTranslator(cfg, nil)
	if err != nil {
		t.Fatalf("buildTranslator: %v", err)
	}
	if tr.Name() != "google" {
		t.Errorf("name = %q, want google", tr.Name())
	}
}

func TestBuildTranslatorLLMNeedsKey(t *testing.T) {
	clearKeyEnv(t)

	cfg := config.Default()
	cfg.Translator = "gemini"
	cfg.CacheEnabled = false

	if _, err := buildTranslator(cfg, nil); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestBuildTranslatorLLM(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg := config.Default()
	cfg.Translator = "gemini"
	cfg.CacheEnabled = false

	tr, err := buildTranslator(cfg, nil)
	if err != nil {
		t.Fatalf("buildTranslator: %v", err)
	}
	if tr.Name() != "gemini" {
		t.Errorf("name = %q, want gemini", tr.Name())
	}
}

func TestBuildTranslatorUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Translator = "deepl"

	if _, err := buildTranslator(cfg, nil); err == nil {
		t.Fatal("expected an error for an unknown translator")
	}
}

func TestBuildTranslatorWrapsCache(t *testing.T) {
	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Close()

	cfg := config.Default()
	cfg.Translator = "google"
	cfg.CacheEnabled = true

	tr, err := buildTranslator(cfg, c)
	if err != nil {
		t.Fatalf("buildTranslator: %v", err)
	}
	if _, ok := tr.(*translate.Cached); !ok {
		t.Errorf("translator type = %T, want *translate.Cached", tr)
	}
	if tr.Name() != "google" {
		t.Errorf("name = %q, want google", tr.Name())
	}
}

func TestBuildTranslatorSkipsCacheWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Translator = "google"
	cfg.CacheEnabled = false

	tr, err := buildTranslator(cfg, nil)
	if err != nil {
		t.Fatalf("buildTranslator: %v", err)
	}
	if _, ok := tr.(*translate.Cached); ok {
		t.Error("translator is cached with caching disabled")
	}
}

func TestTranslateAdapterMapsAutoSource(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantSource string
	}{
		{name: "auto becomes detect", source: "auto", wantSource: ""},
		{name: "explicit passes through", source: "ja", wantSource: "ja"},
		{name: "empty stays empty", source: "", wantSource: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubTranslator{name: "stub"}
			adapter := &translateAdapter{inner: stub, source: tt.source}

			if _, err := adapter.Translate(context.Background(), "hello", "ko"); err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if stub.sources[0] != tt.wantSource {
				t.Errorf("source = %q, want %q", stub.sources[0], tt.wantSource)
			}
			if stub.targets[0] != "ko" {
				t.Errorf("target = %q, want ko", stub.targets[0])
			}
		})
	}
}

func TestRegisterTranscribers(t *testing.T) {
	cfg := config.Default()
	cfg.ModelDir = t.TempDir()

	reg := stt.NewRegistry()
	if err := registerTranscribers(reg, cfg); err != nil {
		t.Fatalf("registerTranscribers: %v", err)
	}

	for _, name := range []string{"whisper-local", "whisper-api"} {
		if reg.Get(name) == nil {
			t.Errorf("provider %s not registered", name)
		}
	}
}

func TestBuildTranscriberUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.ModelDir = t.TempDir()
	cfg.STTProvider = "whisper-cloud"

	reg := stt.NewRegistry()
	if err := registerTranscribers(reg, cfg); err != nil {
		t.Fatalf("registerTranscribers: %v", err)
	}

	_, err := buildTranscriber(reg, cfg)
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
	if !strings.Contains(err.Error(), "whisper-local") {
		t.Errorf("error %q does not list available providers", err)
	}
}
