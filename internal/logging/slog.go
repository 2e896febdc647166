package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Swapped by tests.
var osStdout io.Writer = os.Stdout

// Options selects the sinks for SetupWith. Zero values disable a sink.
type Options struct {
	File      io.Writer              // session log file; stdout is used when nil
	Level     string                 // debug, info, warn or error
	Provider  *sdklog.LoggerProvider // OTel bridge
	GELF      io.Writer              // Graylog writer, one JSON record per write
	GELFLevel string                 // minimum level sent to Graylog; Level when empty
	Clock     Clock                  // stamps simTime on every record
}

// SlogManager owns the process logger and the session attributes its
// records carry.
type SlogManager struct {
	logger  *slog.Logger
	session *SessionHandler
	sinks   []string

	logProvider *sdklog.LoggerProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupWith builds the sink fan-out from opts and replaces the logger.
// Every sink sees the same session attributes.
func (m *SlogManager) SetupWith(opts Options) {
	lvl := parseLevel(opts.Level)
	m.logProvider = opts.Provider

	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	out := opts.File
	if out == nil {
		out = osStdout
	}
	sinks := []Sink{{Name: "text", Handler: slog.NewTextHandler(out, handlerOpts), Min: lvl}}

	if opts.GELF != nil {
		gelfLvl := lvl
		if opts.GELFLevel != "" {
			gelfLvl = parseLevel(opts.GELFLevel)
		}
		sinks = append(sinks, Sink{Name: "gelf", Handler: slog.NewJSONHandler(opts.GELF, handlerOpts), Min: gelfLvl})
	}

	if opts.Provider != nil {
		sinks = append(sinks, Sink{
			Name:    "otel",
			Handler: otelslog.NewHandler("simvis", otelslog.WithLoggerProvider(opts.Provider)),
			Min:     lvl,
		})
	}

	fanout := NewFanout(sinks...)
	m.sinks = fanout.Sinks()
	m.session = NewSessionHandler(fanout, opts.Clock)
	m.logger = slog.New(m.session)
	m.logger.Info("Logging initialized", "level", opts.Level, "sinks", m.sinks)
}

// SetSession names the running session on every record from here on,
// including records of loggers derived earlier.
func (m *SlogManager) SetSession(name string) {
	if m.session != nil {
		m.session.SetSession(name)
	}
}

// Sinks returns the names of the active sinks.
func (m *SlogManager) Sinks() []string { return m.sinks }

// Logger returns the configured logger, or slog.Default before setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
