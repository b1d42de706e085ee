package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("RequestID() = %q, want %q", got, "req-123")
	}
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("RequestID() on empty context = %q, want empty", got)
	}
}

func TestFromContext_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-456")
	FromContext(ctx, base).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-456") {
		t.Errorf("log output %q does not carry the request ID", buf.String())
	}
}

func TestFromContext_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	FromContext(context.Background(), base).Info("hello")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("log output %q carries a request ID, want none", buf.String())
	}
}

func TestFromContext_NilBase(t *testing.T) {
	log := FromContext(context.Background(), nil)
	if log == nil {
		t.Fatal("FromContext(nil) returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
