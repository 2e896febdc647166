package streaming

import (
	"encoding/json"

	"github.com/OCAP2/simvis/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeEntity       = "entity"
	TypeFrame        = "frame"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type    string `json:"type"`              // always "ack"
	For     string `json:"for"`               // the message type being acknowledged
	Session string `json:"session,omitempty"` // session name, when the server echoes it
}

// StartSessionPayload carries the session descriptor.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// FramePayload carries one entity frame.
type FramePayload = core.EntityFrame

// EntityPayload carries one entity descriptor.
type EntityPayload = core.EntityInfo
