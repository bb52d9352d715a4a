package stt

import "testing"

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"blank audio artifact", "[BLANK_AUDIO]", ""},
		{"timestamp prefix", "[00:00:00.000 --> 00:00:04.000] Hello world", "Hello world"},
		{"inline annotation", "Hello [Music] world", "Hello world"},
		{"plain text untouched", "Hello, world.", "Hello, world."},
		{"collapses runs of spaces", "Hello    world", "Hello world"},
		{"trims", "  hola  ", "hola"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTranscript(tt.in); got != tt.want {
				t.Errorf("cleanTranscript(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
