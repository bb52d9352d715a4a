package translate

import (
	"context"
	"log/slog"
	"time"

	"github.com/akhkim/babel/cache"
)

// usageTranslator is implemented by translators that report token usage
// worth storing alongside the cached text.
type usageTranslator interface {
	translateWithUsage(ctx context.Context, text, source, target string) (string, cache.Usage, error)
}

// Cached wraps a Translator with a persistent TTL cache, so repeated
// utterances cost one upstream call.
type Cached struct {
	inner Translator
	cache *cache.Cache
	model string // part of the key, so a model change invalidates entries
	ttl   time.Duration
}

// NewCached wraps inner with the given cache store.
func NewCached(inner Translator, c *cache.Cache, model string) *Cached {
	return &Cached{inner: inner, cache: c, model: model, ttl: cache.DefaultTTL}
}

// SetTTL overrides how long cached entries stay valid. Values at or
// below zero restore the default.
func (t *Cached) SetTTL(d time.Duration) {
	if d <= 0 {
		d = cache.DefaultTTL
	}
	t.ttl = d
}

func (t *Cached) Name() string { return t.inner.Name() }

func (t *Cached) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := cache.GenerateKey(t.inner.Name(), t.model, source, target, text)

	if entry, ok := t.cache.Get(key); ok {
		slog.Debug("translation cache hit", "tokensSaved", entry.Usage.TotalTokens)
		return entry.Text, nil
	}

	out, usage, err := t.translateInner(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	entry := &cache.Entry{Text: out, Usage: usage, CreatedAt: time.Now()}
	// Caching is best effort.
	if err := t.cache.Set(key, entry, t.ttl); err != nil {
		slog.Warn("cache write failed", "error", err)
	}
	return out, nil
}

func (t *Cached) translateInner(ctx context.Context, text, source, target string) (string, cache.Usage, error) {
	if ut, ok := t.inner.(usageTranslator); ok {
		return ut.translateWithUsage(ctx, text, source, target)
	}
	out, err := t.inner.Translate(ctx, text, source, target)
	return out, cache.Usage{}, err
}
