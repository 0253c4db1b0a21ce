package log

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestRingHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewRingHandler(slog.NewTextHandler(&buf, nil), 3)
	logger := slog.New(h).With("component", "test")

	for i := 0; i < 5; i++ {
		logger.Info(fmt.Sprintf("message %d", i), "n", i)
	}

	logs := h.Logs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(logs))
	}
	if logs[0].Message != "message 2" {
		t.Errorf("expected oldest record to be message 2, got %q", logs[0].Message)
	}
	if !bytes.Contains(buf.Bytes(), []byte("message 4")) {
		t.Error("expected records to be forwarded to the wrapped handler")
	}
}

func TestEntries(t *testing.T) {
	var buf bytes.Buffer
	h := NewRingHandler(slog.NewTextHandler(&buf, nil), 0)
	slog.New(h).Warn("scan failed", "error", errors.New("busy"))

	entries := h.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "WARN" || e.Message != "scan failed" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Attrs["error"] != "busy" {
		t.Errorf("expected error attr to be stringified, got %v", e.Attrs["error"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
