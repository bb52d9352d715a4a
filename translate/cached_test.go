package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/akhkim/babel/cache"
	"github.com/akhkim/babel/internal/types"
)

type countingTranslator struct {
	out   string
	err   error
	calls int
}

func (c *countingTranslator) Name() string { return "counting" }

func (c *countingTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.out, nil
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCached_MissThenHit(t *testing.T) {
	inner := &countingTranslator{out: "hello"}
	cached := NewCached(inner, newTestCache(t), "")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		out, err := cached.Translate(ctx, "hola", "es", "en")
		if err != nil {
			t.Fatalf("Translate %d: %v", i, err)
		}
		if out != "hello" {
			t.Errorf("Translate %d = %q, want \"hello\"", i, out)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second lookup served from cache)", inner.calls)
	}
}

func TestCached_KeyCoversRequest(t *testing.T) {
	inner := &countingTranslator{out: "x"}
	cached := NewCached(inner, newTestCache(t), "")

	ctx := context.Background()
	cached.Translate(ctx, "hola", "es", "en")
	cached.Translate(ctx, "hola", "es", "fr") // different target
	cached.Translate(ctx, "adios", "es", "en") // different text
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3 distinct upstream calls", inner.calls)
	}
}

func TestCached_ErrorNotCached(t *testing.T) {
	inner := &countingTranslator{err: errors.New("down")}
	cached := NewCached(inner, newTestCache(t), "")

	ctx := context.Background()
	if _, err := cached.Translate(ctx, "hola", "es", "en"); err == nil {
		t.Fatal("Translate succeeded, want error")
	}

	// Recover upstream: the failure must not have been stored.
	inner.err = nil
	inner.out = "hello"
	out, err := cached.Translate(ctx, "hola", "es", "en")
	if err != nil {
		t.Fatalf("Translate after recovery: %v", err)
	}
	if out != "hello" || inner.calls != 2 {
		t.Errorf("out=%q calls=%d, want fresh upstream call after failure", out, inner.calls)
	}
}

// TestCached_StoresUsage tests that an LLM inner translator's token usage
// lands in the cache entry.
func TestCached_StoresUsage(t *testing.T) {
	completer := &mockCompleter{out: "hello", usage: types.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}}
	inner := NewLLM(completer, "llm-openai", "")
	store := newTestCache(t)
	cached := NewCached(inner, store, "gpt-4o-mini")

	if _, err := cached.Translate(context.Background(), "hola", "es", "en"); err != nil {
		t.Fatalf("Translate: %v", err)
	}

	key := cache.GenerateKey("llm-openai", "gpt-4o-mini", "es", "en", "hola")
	entry, ok := store.Get(key)
	if !ok {
		t.Fatal("entry not stored")
	}
	if entry.Text != "hello" {
		t.Errorf("Text = %q, want \"hello\"", entry.Text)
	}
	if entry.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", entry.Usage.TotalTokens)
	}
}

func TestCached_Name(t *testing.T) {
	cached := NewCached(&countingTranslator{}, newTestCache(t), "")
	if got := cached.Name(); got != "counting" {
		t.Errorf("Name() = %q, want the inner translator's name", got)
	}
}
