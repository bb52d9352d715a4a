package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewCompleter_TypeSwitch(t *testing.T) {
	tests := []struct {
		apiType string
		want    string
	}{
		{"gemini", "*llm.geminiCompleter"},
		{"claude", "*llm.claudeCompleter"},
		{"openai", "*llm.openaiCompleter"},
		{"openai-compatible", "*llm.openaiCompleter"},
		{"something-else", "*llm.openaiCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.apiType, func(t *testing.T) {
			c := NewCompleter(tt.apiType, "key", "", "model", Options{})
			if got := fmt.Sprintf("%T", c); got != tt.want {
				t.Errorf("NewCompleter(%q) = %s, want %s", tt.apiType, got, tt.want)
			}
		})
	}
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var gotReq openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(rw, `{
			"choices": [{"message": {"content": "bonjour"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`)
	}))
	defer srv.Close()

	c := NewCompleter("openai-compatible", "sk-test", srv.URL, "gpt-4o-mini", Options{MaxTokens: 256})
	out, usage, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "You translate text."},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "bonjour" {
		t.Errorf("content = %q, want \"bonjour\"", out)
	}
	if usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", usage.TotalTokens)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want \"gpt-4o-mini\"", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(gotReq.Messages))
	}
}

func TestOpenAICompleter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCompleter("openai-compatible", "k", srv.URL, "m", Options{})
	if _, _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("Complete succeeded on a 429, want error")
	}
}

func TestGeminiBuildRequest(t *testing.T) {
	c := &geminiCompleter{cfg: completerConfig{maxTokens: 100, disableThinking: true}}
	req := c.buildRequest([]Message{
		{Role: "system", Content: "system prompt"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})

	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "system prompt\n" {
		t.Error("system message not lifted into systemInstruction")
	}
	if len(req.Contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(req.Contents))
	}
	if req.Contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q, want \"model\"", req.Contents[1].Role)
	}
	if req.GenerationConfig.ThinkingConfig == nil || req.GenerationConfig.ThinkingConfig.ThinkingBudget != 0 {
		t.Error("thinking budget not zeroed")
	}
}
