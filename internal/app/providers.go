package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/akhkim/babel/cache"
	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/llm"
	"github.com/akhkim/babel/stt"
	"github.com/akhkim/babel/translate"
)

// defaultTranslatorModels maps LLM translator names to the model used
// when the config does not pin one.
var defaultTranslatorModels = map[string]string{
	"gemini": "gemini-2.5-flash",
	"claude": "claude-sonnet-4-5",
	"openai": "gpt-4o-mini",
}

// registerTranscribers fills the registry with every provider the
// config can name. Providers are constructed eagerly but stay cheap
// until Setup or the first Transcribe call.
func registerTranscribers(reg *stt.Registry, cfg *config.Config) error {
	local, err := stt.NewWhisperLocal(stt.WhisperLocalConfig{
		ModelSize: cfg.WhisperModel,
		ModelDir:  cfg.ModelDir,
	})
	if err != nil {
		return fmt.Errorf("init whisper-local: %w", err)
	}
	reg.Register(local)

	reg.Register(stt.NewWhisperAPI(stt.WhisperAPIConfig{
		APIKey:  cfg.APIKey("whisper-api"),
		BaseURL: cfg.BaseURL,
	}))
	return nil
}

// buildTranscriber resolves the configured STT provider from the
// registry and runs its setup step if the provider needs one.
func buildTranscriber(reg *stt.Registry, cfg *config.Config) (stt.Provider, error) {
	prov := reg.Get(cfg.STTProvider)
	if prov == nil {
		return nil, fmt.Errorf("unknown transcriber %q (available: %s)", cfg.STTProvider, strings.Join(transcriberNames(reg), ", "))
	}

	if prov.RequiresSetup() && !prov.IsReady() {
		if err := prov.Setup(logSetupProgress(prov.Name())); err != nil {
			return nil, fmt.Errorf("set up %s: %w", prov.Name(), err)
		}
	}
	if !prov.IsReady() {
		return nil, fmt.Errorf("transcriber %s is not ready", prov.Name())
	}
	return prov, nil
}

func transcriberNames(reg *stt.Registry) []string {
	var names []string
	for _, p := range reg.List() {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// logSetupProgress reports model download progress in decile steps so a
// slow fetch shows life without flooding the log.
func logSetupProgress(name string) func(percent int) {
	last := -1
	return func(percent int) {
		if percent/10 == last/10 && percent != 100 {
			return
		}
		last = percent
		slog.Info("transcriber setup", "provider", name, "percent", percent)
	}
}

// buildTranslator constructs the configured translator, wrapped in the
// persistent cache when caching is enabled.
func buildTranslator(cfg *config.Config, c *cache.Cache) (translate.Translator, error) {
	var (
		inner translate.Translator
		model string
	)

	switch cfg.Translator {
	case "google":
		inner = translate.NewGoogle()
	case "gemini", "claude", "openai", "openai-compatible":
		key := cfg.APIKey(cfg.Translator)
		if key == "" {
			return nil, fmt.Errorf("translator %s needs an API key (set it in the config or the environment)", cfg.Translator)
		}
		model = cfg.TranslatorModel
		if model == "" {
			model = defaultTranslatorModels[cfg.Translator]
		}
		if model == "" {
			return nil, fmt.Errorf("translator %s needs a model", cfg.Translator)
		}
		completer := llm.NewCompleter(cfg.Translator, key, cfg.BaseURL, model, llm.Options{})
		inner = translate.NewLLM(completer, cfg.Translator, cfg.SystemPrompt)
	default:
		return nil, fmt.Errorf("unknown translator %q", cfg.Translator)
	}

	if cfg.CacheEnabled && c != nil {
		cached := translate.NewCached(inner, c, model)
		cached.SetTTL(cfg.CacheTTL())
		return cached, nil
	}
	return inner, nil
}

// translateAdapter narrows the two-language translate.Translator to the
// target-only interface the workers use, carrying the configured source
// language along.
type translateAdapter struct {
	inner  translate.Translator
	source string
}

func (t *translateAdapter) Translate(ctx context.Context, text, target string) (string, error) {
	source := t.source
	if source == "auto" {
		source = ""
	}
	return t.inner.Translate(ctx, text, source, target)
}
