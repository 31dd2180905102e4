package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeRequestProgress = "request_progress"
	TypePing            = "ping"

	// Server -> Client
	TypeProgressUpdate = "progress_update"
	TypePong           = "pong"
	TypeError          = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// ErrorMessage builds an error reply.
func ErrorMessage(code, message, requestID string) Message {
	raw, _ := json.Marshal(ErrorPayload{Code: code, Message: message})
	return Message{Type: TypeError, Payload: raw, RequestID: requestID}
}
