package logging

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/OCAP2/simvis/pkg/core"
)

// Clock reports the current simulation time in seconds.
type Clock interface {
	Time() float64
}

type entityKey struct{}

// WithEntity tags ctx so records logged with it carry the entity id.
func WithEntity(ctx context.Context, id core.ObjectID) context.Context {
	return context.WithValue(ctx, entityKey{}, id)
}

// sessionState is shared by a SessionHandler and every handler derived
// from it, so a session started after setup still reaches child loggers.
type sessionState struct {
	clock Clock
	name  atomic.Pointer[string]
}

// SessionHandler stamps records with the simulation time, the running
// session's name and the entity named by the record's context.
type SessionHandler struct {
	inner slog.Handler
	state *sessionState
}

// NewSessionHandler wraps inner. clock may be nil.
func NewSessionHandler(inner slog.Handler, clock Clock) *SessionHandler {
	return &SessionHandler{inner: inner, state: &sessionState{clock: clock}}
}

// SetSession names the session in subsequent records. An empty name
// stops the attribute.
func (h *SessionHandler) SetSession(name string) {
	h.state.name.Store(&name)
}

func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.state.clock != nil {
		r.AddAttrs(slog.Float64("simTime", h.state.clock.Time()))
	}
	if name := h.state.name.Load(); name != nil && *name != "" {
		r.AddAttrs(slog.String("session", *name))
	}
	if id, ok := ctx.Value(entityKey{}).(core.ObjectID); ok {
		r.AddAttrs(slog.Uint64("entity", uint64(id)))
	}
	return h.inner.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{inner: h.inner.WithAttrs(attrs), state: h.state}
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{inner: h.inner.WithGroup(name), state: h.state}
}
