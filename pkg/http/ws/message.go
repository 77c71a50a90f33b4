package ws

import (
	"encoding/json"
	"fmt"
)

// MessageType constants for the play protocol.
const (
	// Client -> Server
	TypeAnswer = "answer"
	TypePing   = "ping"

	// Server -> Client
	TypeQuestion         = "question"
	TypeInvalidSelection = "invalid_selection"
	TypeFeedback         = "feedback"
	TypeReport           = "report"
	TypeError            = "error"
	TypePong             = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Client Messages (incoming)

type AnswerPayload struct {
	Answer string `json:"answer"`
}

// Server Messages (outgoing)

type QuestionPayload struct {
	SessionID  string          `json:"session_id"`
	Number     int             `json:"number"`
	Total      int             `json:"total"`
	ID         int             `json:"id"`
	Category   string          `json:"category"`
	Difficulty string          `json:"difficulty"`
	Points     int             `json:"points"`
	Prompt     string          `json:"prompt"`
	Code       string          `json:"code,omitempty"`
	Options    []OptionPayload `json:"options"`
}

type OptionPayload struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type InvalidSelectionPayload struct {
	Answer string   `json:"answer"`
	Keys   []string `json:"keys"`
}

type FeedbackPayload struct {
	QuestionID    int    `json:"question_id"`
	Key           string `json:"key"`
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
	CorrectKey    string `json:"correct_key"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
	Insight       string `json:"insight,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
