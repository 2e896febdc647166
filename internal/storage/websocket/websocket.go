package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/pkg/core"
	"github.com/OCAP2/simvis/pkg/streaming"
)

// Backend streams session data over WebSocket to a viewer server.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartSession sends the session descriptor and waits for the server's
// ack. The descriptor opens the log replayed after a reconnect.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}
	b.conn.beginSession(s.Name, data)
	b.conn.send(data)
	return b.conn.awaitAck(streaming.TypeStartSession, s.Name, ackTimeout)
}

// EndSession sends end_session and waits for the ack. The replay log is
// dropped either way.
func (b *Backend) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	name := b.conn.sessionName()
	b.conn.send(data)
	err = b.conn.awaitAck(streaming.TypeEndSession, name, ackTimeout)
	b.conn.endSession()
	return err
}

func (b *Backend) RecordEntity(e *core.EntityInfo) error {
	data, err := marshalEnvelope(streaming.TypeEntity, e)
	if err != nil {
		return err
	}
	b.conn.sendEntity(e.ID, data)
	return nil
}

func (b *Backend) RecordFrame(f *core.EntityFrame) error {
	data, err := marshalEnvelope(streaming.TypeFrame, f)
	if err != nil {
		return err
	}
	b.conn.sendFrame(f.EntityID, data)
	return nil
}

// Reconnects returns how many times the session was rebuilt on a new
// socket.
func (b *Backend) Reconnects() uint64 {
	return b.conn.reconnects.Load()
}

// Dropped returns the number of frames and entities dropped because the
// send buffer was full.
func (b *Backend) Dropped() uint64 {
	return b.conn.droppedCount()
}
