package stt

import "testing"

func TestResultText(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   string
	}{
		{"nil result", nil, ""},
		{"no segments", &Result{Language: "en"}, ""},
		{"single segment trimmed", &Result{Segments: []Segment{{Text: " hello "}}}, "hello"},
		{
			"segments joined with spaces",
			&Result{Segments: []Segment{{Text: "Hola,"}, {Text: "mundo."}}},
			"Hola, mundo.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultDecodeParams(t *testing.T) {
	p := DefaultDecodeParams()
	if p.BeamSize != 1 {
		t.Errorf("BeamSize = %d, want 1", p.BeamSize)
	}
	if !p.VADFilter {
		t.Error("VADFilter = false, want true")
	}
	if p.MinSilenceMS != 500 {
		t.Errorf("MinSilenceMS = %d, want 500", p.MinSilenceMS)
	}
	if p.ConditionOnPrevious {
		t.Error("ConditionOnPrevious = true, want false")
	}
}
