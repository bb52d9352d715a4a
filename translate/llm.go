package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/akhkim/babel/cache"
	"github.com/akhkim/babel/llm"
)

// DefaultSystemPrompt instructs the model to answer with nothing but the
// translation.
const DefaultSystemPrompt = "You are a professional translator. Translate the input text into the target language directly. Output only the translated text."

// LLM translates with a chat-completion model.
type LLM struct {
	completer    llm.Completer
	name         string
	systemPrompt string
}

// NewLLM creates a translator over completer. name shows up in logs and
// the cache key ("llm-openai", "llm-claude", ...). An empty systemPrompt
// falls back to DefaultSystemPrompt.
func NewLLM(completer llm.Completer, name, systemPrompt string) *LLM {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &LLM{
		completer:    completer,
		name:         name,
		systemPrompt: systemPrompt,
	}
}

func (l *LLM) Name() string { return l.name }

func (l *LLM) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, _, err := l.translateWithUsage(ctx, text, source, target)
	return out, err
}

func (l *LLM) translateWithUsage(ctx context.Context, text, source, target string) (string, cache.Usage, error) {
	if strings.TrimSpace(text) == "" {
		return "", cache.Usage{}, nil
	}

	out, usage, err := l.completer.Complete(ctx, l.buildMessages(text, source, target))
	if err != nil {
		return "", cache.Usage{}, fmt.Errorf("complete: %w", err)
	}
	return strings.TrimSpace(out), cache.Usage{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

func (l *LLM) buildMessages(text, source, target string) []llm.Message {
	src := source
	if src == "" {
		src = "the original language"
	}
	content := fmt.Sprintf(
		"please translate the following text from %s to %s:\n\n%s",
		src, target, text,
	)
	return []llm.Message{
		{Role: "system", Content: l.systemPrompt},
		{Role: "user", Content: content},
	}
}
