package ws

import "encoding/json"

// MessageType constants for the attempt feed protocol.
const (
	// Server -> Client
	TypeProgressUpdate = "progress_update"
	TypeError          = "error"
	TypePong           = "pong"

	// Client -> Server
	TypePing = "ping"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload reports a protocol-level failure to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
