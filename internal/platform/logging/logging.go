// Package logging builds the structured zap loggers used by rowedex binaries.
package logging

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

// New builds a production JSON logger at the given level, tagged with service.
func New(service, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if service != "" {
		logger = logger.With(zap.String("service", service))
	}
	return logger, nil
}

// FromContext returns logger annotated with the interaction and the active
// trace carried by ctx. A nil logger yields a no-op logger.
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(zap.String("trace_id", sc.TraceID().String()))
	}
	in, ok := requestctx.InteractionFromContext(ctx)
	if !ok {
		return logger
	}
	fields := make([]zap.Field, 0, 4)
	if in.RequestID != "" {
		fields = append(fields, zap.String("request_id", in.RequestID))
	}
	if in.Kind != "" {
		fields = append(fields, zap.String("interaction", in.Kind))
	}
	if in.UserID != "" {
		fields = append(fields, zap.String("user_id", in.UserID))
	}
	if in.GuildID != "" {
		fields = append(fields, zap.String("guild_id", in.GuildID))
	}
	return logger.With(fields...)
}
