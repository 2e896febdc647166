package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/OCAP2/simvis/pkg/core"
	"github.com/OCAP2/simvis/pkg/streaming"
)

const (
	sendChSize   = 10_000
	ackChSize    = 16
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Tests shorten these.
var (
	ackTimeout       = 10 * time.Second
	reconnectBackoff = time.Second
)

// link is one dialed socket and the loops serving it. Loops of a lost
// link stop before the next link starts, so a socket has one writer.
type link struct {
	conn *ws.Conn
	stop chan struct{}
	once sync.Once
}

func (l *link) halt() { l.once.Do(func() { close(l.stop) }) }

func (l *link) stopped() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

// connection streams envelopes to the server and rebuilds the running
// session on a fresh socket after a disconnect.
type connection struct {
	mu      sync.Mutex
	cur     *link
	session *sessionLog
	closed  bool

	sendCh chan []byte
	ackCh  chan streaming.AckMessage
	done   chan struct{}

	wsURL  string
	secret string

	dropped    atomic.Uint64
	reconnects atomic.Uint64

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		sendCh: make(chan []byte, sendChSize),
		ackCh:  make(chan streaming.AckMessage, ackChSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.start(conn)
	c.mu.Unlock()
	return nil
}

func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// start makes conn the current link. Caller holds mu.
func (c *connection) start(conn *ws.Conn) {
	l := &link{conn: conn, stop: make(chan struct{})}
	c.cur = l
	go c.writeLoop(l)
	go c.readLoop(l)
}

func (c *connection) writeLoop(l *link) {
	for {
		select {
		case <-c.done:
			return
		case <-l.stop:
			return
		case data := <-c.sendCh:
			if l.stopped() {
				c.send(data)
				return
			}
			if err := l.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.lost(l, err)
				return
			}
			if err := l.conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.lost(l, err)
				return
			}
		}
	}
}

// readLoop routes acks to ackCh until the link goes away.
func (c *connection) readLoop(l *link) {
	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			if !l.stopped() {
				c.lost(l, err)
			}
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}
		select {
		case c.ackCh <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// lost retires l and starts one reconnect, however many loops report it.
func (c *connection) lost(l *link, cause error) {
	c.mu.Lock()
	if c.closed || c.cur != l {
		c.mu.Unlock()
		return
	}
	c.cur = nil
	c.mu.Unlock()

	l.halt()
	_ = l.conn.Close()
	c.logger.Warn("WebSocket connection lost", "error", cause)
	go c.reconnect()
}

// reconnect dials with exponential backoff. Before the new link takes
// over the send queue it resends the running session's start message,
// entity descriptors and last frames.
func (c *connection) reconnect() {
	backoff := reconnectBackoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.mu.Lock()
		var replay [][]byte
		session := ""
		if c.session != nil {
			replay = c.session.replay()
			session = c.session.name
		}
		c.mu.Unlock()

		if err := writeAll(conn, replay); err != nil {
			c.logger.Warn("Session replay failed", "attempt", attempt, "error", err)
			_ = conn.Close()
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.start(conn)
		c.mu.Unlock()

		c.reconnects.Add(1)
		c.logger.Info("WebSocket reconnected", "attempt", attempt, "session", session, "replayed", len(replay))
		return
	}
	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

func writeAll(conn *ws.Conn, msgs [][]byte) error {
	for _, m := range msgs {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := conn.WriteMessage(ws.TextMessage, m); err != nil {
			return err
		}
	}
	return nil
}

// send queues data for the write loop and drops it when the queue is full.
func (c *connection) send(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		if c.dropped.Add(1) == 1 {
			c.logger.Warn("WebSocket send channel full, dropping messages")
		}
	}
}

// beginSession starts a new replay log; anything kept for an earlier
// session is discarded.
func (c *connection) beginSession(name string, start []byte) {
	c.mu.Lock()
	c.session = newSessionLog(name, start)
	c.mu.Unlock()
}

func (c *connection) endSession() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

func (c *connection) sessionName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.name
}

// sendEntity and sendFrame are send plus bookkeeping for replay.
func (c *connection) sendEntity(id core.ObjectID, data []byte) {
	c.mu.Lock()
	if c.session != nil {
		c.session.recordEntity(id, data)
	}
	c.mu.Unlock()
	c.send(data)
}

func (c *connection) sendFrame(id core.ObjectID, data []byte) {
	c.mu.Lock()
	if c.session != nil {
		c.session.recordFrame(id, data)
	}
	c.mu.Unlock()
	c.send(data)
}

// awaitAck blocks until the server acknowledges ackFor for session.
// Acks naming another session are left over from an earlier run and are
// skipped; acks without a session match any.
func (c *connection) awaitAck(ackFor, session string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.For != ackFor {
				continue
			}
			if ack.Session != "" && ack.Session != session {
				c.logger.Debug("Ignoring ack of another session", "for", ack.For, "session", ack.Session)
				continue
			}
			return nil
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a close frame and stops all loops.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	l := c.cur
	c.cur = nil
	c.mu.Unlock()

	if l == nil {
		return nil
	}
	l.halt()
	_ = l.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return l.conn.Close()
}
