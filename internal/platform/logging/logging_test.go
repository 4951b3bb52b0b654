package logging

import (
	"context"
	"testing"

	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("dex", "loud"); err == nil {
		t.Fatal("expected error for bad level")
	}
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New("dex", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level enabled")
	}
}

func TestFromContextAddsInteractionFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := requestctx.WithInteraction(context.Background(), requestctx.Interaction{
		RequestID: "req-1",
		Kind:      "component",
		UserID:    "42",
	})
	FromContext(ctx, base).Info("routed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Fatalf("request_id = %v, want req-1", fields["request_id"])
	}
	if fields["interaction"] != "component" {
		t.Fatalf("interaction = %v, want component", fields["interaction"])
	}
	if _, ok := fields["guild_id"]; ok {
		t.Fatal("expected empty guild id to be omitted")
	}
}

func TestFromContextNilLogger(t *testing.T) {
	FromContext(context.Background(), nil).Info("dropped")
}

func TestFromContextAddsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	traceID := trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	FromContext(ctx, zap.New(core)).Info("traced")

	if got := logs.All()[0].ContextMap()["trace_id"]; got != traceID.String() {
		t.Fatalf("trace_id = %v, want %s", got, traceID)
	}
}
