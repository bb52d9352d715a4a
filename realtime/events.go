// Package realtime streams system audio to the OpenAI Realtime
// transcription API over WebRTC and turns transcript events into
// subtitle line updates.
package realtime

import "encoding/json"

// Server event types on the data channel.
const (
	EventTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTranscriptionDelta     = "conversation.item.input_audio_transcription.delta"
	EventSpeechStarted          = "input_audio_buffer.speech_started"
	EventSpeechStopped          = "input_audio_buffer.speech_stopped"
	EventError                  = "error"
)

// VADType selects how the server segments speech.
type VADType string

const (
	VADTypeSemanticVAD VADType = "semantic_vad"
	VADTypeServerVAD   VADType = "server_vad"
)

// VADEagerness controls how quickly the server closes a segment.
type VADEagerness string

const (
	VADEagernessLow    VADEagerness = "low"
	VADEagernessMedium VADEagerness = "medium"
	VADEagernessHigh   VADEagerness = "high"
	VADEagernessAuto   VADEagerness = "auto"
)

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	Type              VADType      `json:"type"`
	Eagerness         VADEagerness `json:"eagerness,omitempty"`
	CreateResponse    bool         `json:"create_response,omitempty"`
	InterruptResponse bool         `json:"interrupt_response,omitempty"`
}

// SessionUpdate is the client event that reconfigures a live session.
type SessionUpdate struct {
	Type    string `json:"type"`
	Session struct {
		TurnDetection *TurnDetection `json:"turn_detection,omitempty"`
	} `json:"session"`
}

// Event is a discriminated union for server events. Check the concrete
// type via type switch.
type Event interface {
	eventType() string
}

// SpeechStartedEvent is emitted when VAD detects speech.
type SpeechStartedEvent struct {
	EventID      string `json:"event_id"`
	AudioStartMs int    `json:"audio_start_ms"`
	ItemID       string `json:"item_id"`
}

func (SpeechStartedEvent) eventType() string { return EventSpeechStarted }

// SpeechStoppedEvent is emitted when VAD detects silence.
type SpeechStoppedEvent struct {
	EventID    string `json:"event_id"`
	AudioEndMs int    `json:"audio_end_ms"`
	ItemID     string `json:"item_id"`
}

func (SpeechStoppedEvent) eventType() string { return EventSpeechStopped }

// TranscriptEvent carries the final transcript of one speech item.
type TranscriptEvent struct {
	EventID    string `json:"event_id"`
	ItemID     string `json:"item_id"`
	Transcript string `json:"transcript"`
}

func (TranscriptEvent) eventType() string { return EventTranscriptionCompleted }

// TranscriptDeltaEvent carries a streaming transcript fragment.
type TranscriptDeltaEvent struct {
	EventID    string `json:"event_id"`
	ItemID     string `json:"item_id"`
	ContentIdx int    `json:"content_index"`
	Delta      string `json:"delta"`
}

func (TranscriptDeltaEvent) eventType() string { return EventTranscriptionDelta }

// ErrorEvent reports an API error.
type ErrorEvent struct {
	EventID string `json:"event_id"`
	Error   struct {
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
		Param   string `json:"param,omitempty"`
	} `json:"error"`
}

func (ErrorEvent) eventType() string { return EventError }

// UnknownEvent holds event types the client does not handle.
type UnknownEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Raw     json.RawMessage
}

func (e UnknownEvent) eventType() string { return e.Type }

// ParseEvent unmarshals a data channel message into its Event type.
func ParseEvent(data []byte) (Event, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	switch header.Type {
	case EventSpeechStarted:
		var e SpeechStartedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventSpeechStopped:
		var e SpeechStoppedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventTranscriptionCompleted:
		var e TranscriptEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventTranscriptionDelta:
		var e TranscriptDeltaEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventError:
		var e ErrorEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return UnknownEvent{Type: header.Type, Raw: data}, nil
	}
}
