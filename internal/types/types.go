// Package types provides shared type definitions for the application.
package types

// SubtitleLine is one display update delivered to subtitle sinks.
//
// The chunked pipeline emits one final line per utterance. The realtime
// mode emits several updates sharing an ID, the last one with Final set.
type SubtitleLine struct {
	ID         string `json:"id"`                   // Unique identifier
	Text       string `json:"text"`                 // Text to display (translated or fallback)
	SourceText string `json:"sourceText,omitempty"` // Transcript before translation
	SourceLang string `json:"sourceLang,omitempty"` // Detected or configured source language
	TargetLang string `json:"targetLang,omitempty"` // Configured target language
	Final      bool   `json:"final"`                // Whether the text will change again
	Timestamp  int64  `json:"timestamp"`            // Unix timestamp in milliseconds
}

// SessionStatus reports the state of a running capture session.
type SessionStatus struct {
	Active      bool   `json:"active"`
	Mode        string `json:"mode"` // "chunked" or "realtime"
	Device      string `json:"device"`
	SampleRate  int    `json:"sampleRate"`
	SourceLang  string `json:"sourceLang"`
	TargetLang  string `json:"targetLang"`
	Transcriber string `json:"transcriber"`
	Translator  string `json:"translator"`
	Duration    int64  `json:"duration"`  // Running duration in seconds
	LineCount   int    `json:"lineCount"` // Lines emitted so far
}

// Usage represents token usage statistics from LLM API calls.
type Usage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens"`
	TotalTokens      int  `json:"totalTokens"`
	CacheHit         bool `json:"cacheHit"`
}

// TranscriberInfo describes a transcription provider for listings.
type TranscriberInfo struct {
	Name          string `json:"name"`          // Provider identifier
	DisplayName   string `json:"displayName"`   // Human-readable name
	IsLocal       bool   `json:"isLocal"`       // Whether it runs locally
	RequiresSetup bool   `json:"requiresSetup"` // Whether setup is needed (e.g., model download)
	SetupProgress int    `json:"setupProgress"` // Setup progress 0-100, -1 if not started
	IsReady       bool   `json:"isReady"`       // Whether the provider is ready to use
}
