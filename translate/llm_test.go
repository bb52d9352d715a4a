package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akhkim/babel/internal/types"
	"github.com/akhkim/babel/llm"
)

type mockCompleter struct {
	out   string
	usage types.Usage
	err   error

	calls    int
	messages []llm.Message
}

func (m *mockCompleter) Complete(_ context.Context, messages []llm.Message) (string, types.Usage, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return "", types.Usage{}, m.err
	}
	return m.out, m.usage, nil
}

func TestLLM_Translate(t *testing.T) {
	completer := &mockCompleter{out: " bonjour \n"}
	l := NewLLM(completer, "llm-openai", "")

	out, err := l.Translate(context.Background(), "hello", "en", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "bonjour" {
		t.Errorf("out = %q, want trimmed \"bonjour\"", out)
	}

	if len(completer.messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(completer.messages))
	}
	if completer.messages[0].Role != "system" || completer.messages[0].Content != DefaultSystemPrompt {
		t.Error("system message missing or not the default prompt")
	}
	user := completer.messages[1].Content
	if !strings.Contains(user, "from en to fr") {
		t.Errorf("user message %q lacks the language pair", user)
	}
	if !strings.Contains(user, "hello") {
		t.Errorf("user message %q lacks the input text", user)
	}
}

func TestLLM_AutoSource(t *testing.T) {
	completer := &mockCompleter{out: "hola"}
	l := NewLLM(completer, "llm-openai", "")

	if _, err := l.Translate(context.Background(), "hello", "", "es"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if user := completer.messages[1].Content; !strings.Contains(user, "from the original language to es") {
		t.Errorf("user message %q lacks the auto-source phrasing", user)
	}
}

func TestLLM_CustomSystemPrompt(t *testing.T) {
	completer := &mockCompleter{out: "x"}
	l := NewLLM(completer, "llm-claude", "Keep names untranslated.")

	l.Translate(context.Background(), "hello", "en", "de")
	if got := completer.messages[0].Content; got != "Keep names untranslated." {
		t.Errorf("system prompt = %q, want the custom one", got)
	}
}

func TestLLM_EmptyText(t *testing.T) {
	completer := &mockCompleter{out: "x"}
	l := NewLLM(completer, "llm-openai", "")

	out, err := l.Translate(context.Background(), "  ", "en", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "" || completer.calls != 0 {
		t.Errorf("blank input: out=%q calls=%d, want no call and empty output", out, completer.calls)
	}
}

func TestLLM_Error(t *testing.T) {
	completer := &mockCompleter{err: errors.New("quota exceeded")}
	l := NewLLM(completer, "llm-openai", "")

	if _, err := l.Translate(context.Background(), "hello", "en", "fr"); err == nil {
		t.Error("Translate succeeded, want error")
	}
}
