package realtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	rt "github.com/openai/openai-go/v3/realtime"
)

// SDPEndpoint is where the WebRTC offer is exchanged for an answer.
const SDPEndpoint = "https://api.openai.com/v1/realtime/calls"

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = string(rt.AudioTranscriptionModelGPT4oTranscribe)

// SessionToken is the ephemeral key minted for one WebRTC session.
type SessionToken struct {
	Value     string
	ExpiresAt int64
}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// SessionConfig configures the transcription session.
type SessionConfig struct {
	Model    string // Transcription model, e.g. "gpt-4o-transcribe"
	Language string // Source language code; "" or "auto" lets the server detect
	Prompt   string // Optional transcription prompt
}

// CreateSession mints an ephemeral session token for a WebRTC
// transcription session with server-side semantic VAD.
func CreateSession(ctx context.Context, apiKey string, cfg SessionConfig) (*SessionToken, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	transcription := rt.AudioTranscriptionParam{
		Model: rt.AudioTranscriptionModel(model),
	}
	if cfg.Language != "" && cfg.Language != "auto" {
		transcription.Language = openai.String(cfg.Language)
	}
	if cfg.Prompt != "" {
		transcription.Prompt = openai.String(cfg.Prompt)
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	params := rt.ClientSecretNewParams{
		Session: rt.ClientSecretNewParamsSessionUnion{
			OfTranscription: &rt.RealtimeTranscriptionSessionCreateRequestParam{
				Audio: rt.RealtimeTranscriptionSessionAudioParam{
					Input: rt.RealtimeTranscriptionSessionAudioInputParam{
						TurnDetection: rt.RealtimeTranscriptionSessionAudioInputTurnDetectionUnionParam{
							OfSemanticVad: &rt.RealtimeTranscriptionSessionAudioInputTurnDetectionSemanticVadParam{
								Type:      "semantic_vad",
								Eagerness: string(VADEagernessHigh),
							},
						},
						Transcription: transcription,
					},
				},
			},
		},
	}
	resp, err := client.Realtime.ClientSecrets.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create client secret: %w", err)
	}

	return &SessionToken{
		Value:     resp.Value,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// ExchangeSDP posts the local SDP offer and returns the remote answer.
func ExchangeSDP(ctx context.Context, offer, ephemeralKey string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, SDPEndpoint, bytes.NewBufferString(offer))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ephemeralKey)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)
	}
	return string(body), nil
}
