// Package config loads and persists the application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

const (
	appName        = "babel"
	configFileName = "config.json"
)

// Config represents the application configuration. JSON fields missing
// from an older config file keep their defaults on load.
type Config struct {
	// Capture
	Device       string  `json:"device"`       // Index, name substring, or "auto"
	SampleRate   int     `json:"sampleRate"`   // 0 uses the device default
	ChunkSeconds float64 `json:"chunkSeconds"` // Chunked mode block length
	QueueSize    int     `json:"queueSize"`    // Pending chunk capacity
	Threshold    float64 `json:"threshold"`    // Peak amplitude gate
	ClearDelay   float64 `json:"clearDelay"`   // Seconds of silence before the overlay clears

	// Languages
	SourceLang string `json:"sourceLang"` // "auto" detects per chunk
	TargetLang string `json:"targetLang"`

	// Transcription
	Mode          string `json:"mode"`                    // "chunked" or "realtime"
	STTProvider   string `json:"sttProvider"`             // "whisper-local" or "whisper-api"
	WhisperModel  string `json:"whisperModel"`            // tiny, base, small, medium, large
	ModelDir      string `json:"modelDir,omitempty"`      // Override for downloaded models
	RealtimeModel string `json:"realtimeModel,omitempty"` // Realtime mode transcription model

	// Translation
	Translator      string `json:"translator"` // "google", "openai", "claude", "gemini", "openai-compatible"
	TranslatorModel string `json:"translatorModel,omitempty"`
	SystemPrompt    string `json:"systemPrompt,omitempty"`
	BaseURL         string `json:"baseUrl,omitempty"` // For openai-compatible endpoints

	// API keys by provider name. Environment variables take precedence.
	APIKeys map[string]string `json:"apiKeys,omitempty"`

	// Output
	OverlayAddr string `json:"overlayAddr"`
	Console     bool   `json:"console"`
	Clipboard   bool   `json:"clipboard"`
	Hotkey      string `json:"hotkey"`

	// Cache
	CacheEnabled bool    `json:"cacheEnabled"`
	CacheDir     string  `json:"cacheDir,omitempty"`
	CacheTTLDays float64 `json:"cacheTTLDays"`

	LogLevel string `json:"logLevel"` // debug, info, warn, error
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Device:       "auto",
		ChunkSeconds: 3.0,
		QueueSize:    3,
		Threshold:    0.001,
		ClearDelay:   2.0,
		SourceLang:   "auto",
		TargetLang:   "en",
		Mode:         "chunked",
		STTProvider:  "whisper-local",
		WhisperModel: "base",
		Translator:   "google",
		OverlayAddr:  "127.0.0.1:8737",
		Console:      true,
		Hotkey:       "ctrl+shift+space",
		CacheEnabled: true,
		CacheTTLDays: 7,
		LogLevel:     "info",
	}
}

// Load reads the configuration, layering the file over the defaults and
// the environment (including a .env file) over the file's API keys. A
// missing file yields the defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize repairs values an older or hand-edited file may carry.
func (c *Config) normalize() {
	def := Default()
	if c.ChunkSeconds <= 0 {
		c.ChunkSeconds = def.ChunkSeconds
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Threshold < 0 {
		c.Threshold = def.Threshold
	}
	if c.ClearDelay <= 0 {
		c.ClearDelay = def.ClearDelay
	}
	if c.Device == "" {
		c.Device = def.Device
	}
	if c.SourceLang == "" {
		c.SourceLang = def.SourceLang
	}
	if c.TargetLang == "" {
		c.TargetLang = def.TargetLang
	}
	if c.Mode != "chunked" && c.Mode != "realtime" {
		c.Mode = def.Mode
	}
	if c.STTProvider == "" {
		c.STTProvider = def.STTProvider
	}
	if c.WhisperModel == "" {
		c.WhisperModel = def.WhisperModel
	}
	if c.Translator == "" {
		c.Translator = def.Translator
	}
	if c.OverlayAddr == "" {
		c.OverlayAddr = def.OverlayAddr
	}
	if c.Hotkey == "" {
		c.Hotkey = def.Hotkey
	}
	if c.CacheTTLDays <= 0 {
		c.CacheTTLDays = def.CacheTTLDays
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Save persists the configuration. The file holds API keys, so it is
// written user-only.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// envKeyNames maps translator/transcriber providers to the environment
// variables that can hold their API key, in precedence order.
var envKeyNames = map[string][]string{
	"openai":            {"OPENAI_API_KEY"},
	"openai-compatible": {"OPENAI_API_KEY"},
	"whisper-api":       {"OPENAI_API_KEY"},
	"realtime":          {"OPENAI_API_KEY"},
	"claude":            {"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"},
	"gemini":            {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// APIKey resolves the key for a provider: environment first, then the
// config file.
func (c *Config) APIKey(provider string) string {
	for _, name := range envKeyNames[provider] {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return c.APIKeys[provider]
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// ChunkDuration returns ChunkSeconds as a duration.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.ChunkSeconds * float64(time.Second))
}

// ClearDelayDuration returns ClearDelay as a duration.
func (c *Config) ClearDelayDuration() time.Duration {
	return time.Duration(c.ClearDelay * float64(time.Second))
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays * 24 * float64(time.Hour))
}

// Set assigns a field by its JSON name from a string value, for the
// command line config editor.
func (c *Config) Set(key, value string) error {
	switch key {
	case "device":
		c.Device = value
	case "sampleRate":
		return setInt(&c.SampleRate, value)
	case "chunkSeconds":
		return setFloat(&c.ChunkSeconds, value)
	case "queueSize":
		return setInt(&c.QueueSize, value)
	case "threshold":
		return setFloat(&c.Threshold, value)
	case "clearDelay":
		return setFloat(&c.ClearDelay, value)
	case "sourceLang":
		c.SourceLang = value
	case "targetLang":
		c.TargetLang = value
	case "mode":
		if value != "chunked" && value != "realtime" {
			return fmt.Errorf("mode must be chunked or realtime")
		}
		c.Mode = value
	case "sttProvider":
		c.STTProvider = value
	case "whisperModel":
		c.WhisperModel = value
	case "modelDir":
		c.ModelDir = value
	case "realtimeModel":
		c.RealtimeModel = value
	case "translator":
		c.Translator = value
	case "translatorModel":
		c.TranslatorModel = value
	case "systemPrompt":
		c.SystemPrompt = value
	case "baseUrl":
		c.BaseURL = value
	case "overlayAddr":
		c.OverlayAddr = value
	case "console":
		return setBool(&c.Console, value)
	case "clipboard":
		return setBool(&c.Clipboard, value)
	case "hotkey":
		c.Hotkey = value
	case "cacheEnabled":
		return setBool(&c.CacheEnabled, value)
	case "cacheDir":
		c.CacheDir = value
	case "cacheTTLDays":
		return setFloat(&c.CacheTTLDays, value)
	case "logLevel":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setInt(dst *int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("not an integer: %q", value)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", value)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", value)
	}
	*dst = v
	return nil
}

// Watch invokes onChange with the freshly loaded config whenever the
// config file changes. The returned function stops watching. The watch
// covers the directory, editors replace the file on save.
func Watch(onChange func(*Config)) (func(), error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := loadFrom(path)
				if err != nil {
					slog.Warn("reload config", "error", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
