package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: slog.LevelDebug, Component: ComponentStore})

	logger.Warn("slot unreadable", FieldSlotKey, "controlly_cards")
	logger.WithComponent(ComponentCache).Debug("miss")

	out := buf.String()
	if !strings.Contains(out, "component=store") || !strings.Contains(out, "slot_key=controlly_cards") {
		t.Fatalf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=cache") {
		t.Fatalf("WithComponent not applied: %q", out)
	}
}

func TestIntoContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf, Level: slog.LevelInfo})

	ctx := IntoContext(context.Background(), base.With(FieldRequestID, "req-42"))
	FromContext(ctx).Info("inside")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("request id not propagated: %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithEntity("card", "card_1").WithError(errors.New("boom")).WithError(nil)
	if f[FieldEntity] != "card" || f[FieldEntityID] != "card_1" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 6 {
		t.Fatalf("expected 3 key/value pairs, got %v", f.ToSlice())
	}
}
