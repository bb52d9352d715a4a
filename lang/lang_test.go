package lang

import "testing"

// TestMatch_EquivalenceGroups tests that variants within a group match in
// both directions.
func TestMatch_EquivalenceGroups(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		target   string
		want     bool
	}{
		{name: "identical codes", detected: "en", target: "en", want: true},
		{name: "code and name", detected: "en", target: "english", want: true},
		{name: "chinese simplified variant", detected: "zh", target: "zh-cn", want: true},
		{name: "chinese traditional variant", detected: "zh-tw", target: "chinese", want: true},
		{name: "hebrew legacy code", detected: "he", target: "iw", want: true},
		{name: "hebrew name", detected: "hebrew", target: "he", want: true},
		{name: "norwegian nynorsk", detected: "nynorsk", target: "no", want: true},
		{name: "javanese legacy code", detected: "jv", target: "jw", want: true},
		{name: "spanish castilian", detected: "castilian", target: "es", want: true},
		{name: "dutch flemish", detected: "flemish", target: "nl", want: true},
		{name: "different languages", detected: "es", target: "en", want: false},
		{name: "unknown detected code", detected: "xx", target: "en", want: false},
		{name: "empty detected", detected: "", target: "en", want: false},
		{name: "empty target", detected: "en", target: "", want: false},
		{name: "unknown equal codes still match", detected: "xx", target: "xx", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.detected, tt.target); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.detected, tt.target, got, tt.want)
			}
		})
	}
}

// TestMatch_Symmetry tests that matching is symmetric for every pair in
// every group.
func TestMatch_Symmetry(t *testing.T) {
	for _, group := range equivalenceGroups {
		for _, a := range group {
			for _, b := range group {
				if !Match(a, b) || !Match(b, a) {
					t.Errorf("Match(%q, %q) not symmetric within group %v", a, b, group)
				}
			}
		}
	}
}

// TestMatch_CaseInsensitive tests that case is ignored on both sides.
func TestMatch_CaseInsensitive(t *testing.T) {
	if !Match("ZH", "zh-cn") {
		t.Errorf("Match(ZH, zh-cn) = false, want true")
	}
	if !Match("English", "EN") {
		t.Errorf("Match(English, EN) = false, want true")
	}
}

// TestTranslatorCode tests the transcription-to-translation code mapping.
func TestTranslatorCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "zh", want: "zh-cn"},
		{code: "he", want: "iw"},
		{code: "jv", want: "jw"},
		{code: "nn", want: "no"},
		{code: "oc", want: "ca"},
		{code: "sa", want: "hi"},
		{code: "bo", want: "zh-cn"},
		{code: "en", want: "en"},
		{code: "es", want: "es"},
		{code: "", want: ""},
	}

	for _, tt := range tests {
		if got := TranslatorCode(tt.code); got != tt.want {
			t.Errorf("TranslatorCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestTargetCode tests catalog resolution by code and by display name.
func TestTargetCode(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "by code", in: "en", want: "en", wantOK: true},
		{name: "by display name", in: "English", want: "en", wantOK: true},
		{name: "display name case-insensitive", in: "spanish", want: "es", wantOK: true},
		{name: "regional code", in: "zh-CN", want: "zh-cn", wantOK: true},
		{name: "hebrew catalog code", in: "Hebrew", want: "iw", wantOK: true},
		{name: "unknown", in: "klingon", want: "", wantOK: false},
		{name: "empty", in: "", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TargetCode(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TargetCode(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestName tests display-name lookup for common codes.
func TestName(t *testing.T) {
	if got := Name("es"); got != "Spanish" {
		t.Errorf("Name(es) = %q, want Spanish", got)
	}
	if got := Name("not-a-code!"); got != "not-a-code!" {
		t.Errorf("Name(not-a-code!) = %q, want the input back", got)
	}
}
