package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akhkim/babel/lang"
)

const defaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google translates through the public web endpoint behind the browser
// translation widget. It needs no API key.
type Google struct {
	endpoint string
	http     *http.Client
}

// NewGoogle creates a Google translator against the public endpoint.
func NewGoogle() *Google {
	return &Google{
		endpoint: defaultGoogleEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGoogleWithEndpoint creates a Google translator against a custom
// endpoint URL.
func NewGoogleWithEndpoint(endpoint string) *Google {
	g := NewGoogle()
	g.endpoint = endpoint
	return g
}

func (g *Google) Name() string { return "google" }

// Translate sends text to the endpoint and joins the translated sentence
// rows. Empty input translates to empty output without a request.
func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	sl := "auto"
	if source != "" {
		sl = lang.TranslatorCode(source)
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sl)
	params.Set("tl", lang.TranslatorCode(target))
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("endpoint error %d: %s", resp.StatusCode, string(body))
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse decodes the endpoint's nested-array format:
// [[["translated","source",...],...],...]. Only the first column of each
// sentence row is text; later rows and columns carry metadata.
func parseGoogleResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &sentences); err != nil {
		return "", fmt.Errorf("parse sentences: %w", err)
	}

	var sb strings.Builder
	for _, row := range sentences {
		if len(row) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(row[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translation in response")
	}
	return sb.String(), nil
}
