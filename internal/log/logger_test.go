package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentStats, Output: &buf})

	l.Info("month computed", FieldMonth, "2024-05")
	l.WithComponent(ComponentCache).Debug("swept")

	out := buf.String()
	if !strings.Contains(out, "component=stats") || !strings.Contains(out, "month=2024-05") {
		t.Errorf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=cache") {
		t.Errorf("WithComponent not applied: %q", out)
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf, Format: "json"}))
	r := httptest.NewRequest("POST", "/ledger/2024-05-01/transactions", nil)

	sl.LogHTTPEnd(context.Background(), r, 422, 3, "127.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, 500, 3, "127.0.0.1")
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpAdd, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"WARN"`) {
		t.Errorf("422 should log WARN: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"ERROR"`) {
		t.Errorf("500 should log ERROR: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"error":"disk full"`) || !strings.Contains(lines[2], `"component":"storage"`) {
		t.Errorf("unexpected error line: %s", lines[2])
	}
}

func TestFromContextFallback(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", l.Component())
	}
}
