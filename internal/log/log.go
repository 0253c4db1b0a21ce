package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultCapacity = 100

// RingHandler is a slog.Handler that keeps the most recent records in memory
// so they can be served to bridge clients.
type RingHandler struct {
	slog.Handler
	ring *ring
}

type ring struct {
	mu       sync.Mutex
	capacity int
	logs     []slog.Record
}

// NewRingHandler creates a new RingHandler that forwards to handler.
func NewRingHandler(handler slog.Handler, capacity int) *RingHandler {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RingHandler{
		Handler: handler,
		ring:    &ring{capacity: capacity},
	}
}

// Handle stores the record and forwards it.
func (h *RingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.ring.mu.Lock()
	h.ring.logs = append(h.ring.logs, r.Clone())
	if len(h.ring.logs) > h.ring.capacity {
		h.ring.logs = h.ring.logs[1:]
	}
	h.ring.mu.Unlock()

	return h.Handler.Handle(ctx, r)
}

// WithAttrs keeps sharing the same ring.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RingHandler{Handler: h.Handler.WithAttrs(attrs), ring: h.ring}
}

// WithGroup keeps sharing the same ring.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	return &RingHandler{Handler: h.Handler.WithGroup(name), ring: h.ring}
}

// Logs returns the stored log records.
func (h *RingHandler) Logs() []slog.Record {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	logs := make([]slog.Record, len(h.ring.logs))
	copy(logs, h.ring.logs)
	return logs
}

// Entry is the JSON form of a stored record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Entries returns the stored records as JSON-friendly entries.
func (h *RingHandler) Entries() []Entry {
	logs := h.Logs()
	entries := make([]Entry, 0, len(logs))
	for _, r := range logs {
		e := Entry{Time: r.Time, Level: r.Level.String(), Message: r.Message}
		r.Attrs(func(a slog.Attr) bool {
			if e.Attrs == nil {
				e.Attrs = make(map[string]any)
			}
			v := a.Value.Resolve().Any()
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			e.Attrs[a.Key] = v
			return true
		})
		entries = append(entries, e)
	}
	return entries
}

// ParseLevel maps debug, info, warn and error to a slog.Level.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

var defaultHandler *RingHandler

// Init initializes the default logger writing text to w.
func Init(w io.Writer, level slog.Level) *RingHandler {
	defaultHandler = NewRingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), defaultCapacity)
	slog.SetDefault(slog.New(defaultHandler))
	return defaultHandler
}

// Entries returns the stored records of the default logger.
func Entries() []Entry {
	if defaultHandler == nil {
		return nil
	}
	return defaultHandler.Entries()
}
