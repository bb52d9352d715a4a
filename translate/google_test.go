package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGoogle_Translate(t *testing.T) {
	var gotSL, gotTL, gotQ, gotClient string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotClient = q.Get("client")
		gotSL = q.Get("sl")
		gotTL = q.Get("tl")
		gotQ = q.Get("q")
		fmt.Fprint(rw, `[[["Hello, ","Hola, ",null,null,10],["world","mundo",null,null,10]],null,"es"]`)
	}))
	defer srv.Close()

	g := NewGoogleWithEndpoint(srv.URL)
	out, err := g.Translate(context.Background(), "Hola, mundo", "", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Hello, world" {
		t.Errorf("out = %q, want \"Hello, world\"", out)
	}
	if gotClient != "gtx" {
		t.Errorf("client = %q, want \"gtx\"", gotClient)
	}
	if gotSL != "auto" {
		t.Errorf("sl = %q, want \"auto\" for empty source", gotSL)
	}
	if gotTL != "en" {
		t.Errorf("tl = %q, want \"en\"", gotTL)
	}
	if gotQ != "Hola, mundo" {
		t.Errorf("q = %q, want the input text", gotQ)
	}
}

// TestGoogle_SourceCodeMapping tests that source codes the endpoint spells
// differently are mapped before the request.
func TestGoogle_SourceCodeMapping(t *testing.T) {
	var gotSL string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotSL = r.URL.Query().Get("sl")
		fmt.Fprint(rw, `[[["Hello","你好",null,null,10]]]`)
	}))
	defer srv.Close()

	g := NewGoogleWithEndpoint(srv.URL)
	if _, err := g.Translate(context.Background(), "你好", "zh", "en"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if gotSL != "zh-cn" {
		t.Errorf("sl = %q, want \"zh-cn\"", gotSL)
	}
}

func TestGoogle_EmptyText(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewGoogleWithEndpoint(srv.URL)
	out, err := g.Translate(context.Background(), "   ", "", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
	if called {
		t.Error("blank input still hit the endpoint")
	}
}

func TestGoogle_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleWithEndpoint(srv.URL)
	if _, err := g.Translate(context.Background(), "hola", "", "en"); err == nil {
		t.Error("Translate succeeded on a 429, want error")
	}
}

func TestParseGoogleResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "single sentence",
			body: `[[["Hello","Hola",null,null,1]],null,"es"]`,
			want: "Hello",
		},
		{
			name: "multiple rows joined",
			body: `[[["One. ","Uno. "],["Two.","Dos."]],null,"es"]`,
			want: "One. Two.",
		},
		{
			name: "metadata rows skipped",
			body: `[[["Hi","Hola"],[null,null,null,"x"]],null,"es"]`,
			want: "Hi",
		},
		{name: "not json", body: `<html>blocked</html>`, wantErr: true},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "no text rows", body: `[[],null,"es"]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGoogleResponse([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseGoogleResponse = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGoogleResponse: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseGoogleResponse = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoogle_Name(t *testing.T) {
	if got := NewGoogle().Name(); got != "google" {
		t.Errorf("Name() = %q, want \"google\"", got)
	}
	if !strings.Contains(defaultGoogleEndpoint, "translate_a/single") {
		t.Errorf("endpoint = %q, want the single-translate path", defaultGoogleEndpoint)
	}
}
