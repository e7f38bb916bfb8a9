// Package logging writes DriverAid's activity log. Every record carries the
// component that wrote it and, once a run has begun, the run's session id and
// backend, so the lines of one run can be pulled out of a shared activity.log.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Field names shared by every activity log line.
const (
	KeyComponent = "component"
	KeySessionID = "sessionId"
	KeyBackend   = "backend"
	KeyDriverID  = "driverId"
)

// sink is the output shared by every logger: the handler chosen by Init and
// the stamp of the run in progress.
type sink struct {
	mu      sync.RWMutex
	handler slog.Handler
	session []slog.Attr
}

func (s *sink) load() (slog.Handler, []slog.Attr) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler, s.session
}

func (s *sink) setHandler(h slog.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *sink) setSession(attrs []slog.Attr) {
	s.mu.Lock()
	s.session = attrs
	s.mu.Unlock()
}

// runHandler resolves the sink at every call, so package-level loggers made
// with L before Init and BeginSession still follow them.
type runHandler struct {
	sink   *sink
	attrs  []slog.Attr
	groups []string
}

func (h *runHandler) Enabled(ctx context.Context, level slog.Level) bool {
	handler, _ := h.sink.load()
	return handler.Enabled(ctx, level)
}

func (h *runHandler) Handle(ctx context.Context, record slog.Record) error {
	handler, session := h.sink.load()
	if len(session) > 0 {
		handler = handler.WithAttrs(session)
	}
	for _, group := range h.groups {
		handler = handler.WithGroup(group)
	}
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	return handler.Handle(ctx, record)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{
		sink:   h.sink,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{
		sink:   h.sink,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

var (
	out  = &sink{handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})}
	root = slog.New(&runHandler{sink: out})
)

func init() {
	slog.SetDefault(root)
}

// Init selects the activity log format ("json" or "text") and minimum level.
// A nil output writes to stderr so stdout stays free for the console.
func Init(format, level string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	out.setHandler(handler)
}

// BeginSession stamps sessionId and backend onto every record until EndSession.
func BeginSession(sessionID, backend string) {
	out.setSession([]slog.Attr{
		slog.String(KeySessionID, sessionID),
		slog.String(KeyBackend, backend),
	})
}

// EndSession drops the session stamp.
func EndSession() {
	out.setSession(nil)
}

// L returns a logger tagged with the given component name.
func L(component string) *slog.Logger {
	return root.With(slog.String(KeyComponent, component))
}

// ForDriver tags logger with the driver's id from the current scan.
func ForDriver(logger *slog.Logger, id int) *slog.Logger {
	return logger.With(slog.Int(KeyDriverID, id))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
