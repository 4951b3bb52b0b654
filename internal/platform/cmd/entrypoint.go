// Package cmd holds the startup plumbing shared by rowedex binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/rowedex/internal/platform/config"
	"github.com/louisbranch/rowedex/internal/platform/otel"
	"go.uber.org/zap"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// Service names used for tracing resources, loggers and CLI naming.
const (
	ServiceDex    = "dex"
	ServiceDexCtl = "dexctl"
)

// Options tunes Run.
type Options struct {
	// ShutdownTimeout bounds the final span flush.
	ShutdownTimeout time.Duration
	// Logger reports flush failures. Nil discards them.
	Logger *zap.Logger
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags over the env defaults already in place.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry runs fn with tracing configured for service.
func RunWithTelemetry(ctx context.Context, service string, fn func(context.Context) error) error {
	return Run(ctx, service, Options{}, fn)
}

// Run installs the tracer provider for service, runs fn, then flushes spans
// whether or not fn failed.
func Run(ctx context.Context, service string, opts Options, fn func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if fn == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("%s tracing: %w", service, err)
	}
	defer func() {
		timeout := opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultOTelShutdownTimeout
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("flush traces", zap.String("service", service), zap.Error(err))
		}
	}()
	return fn(ctx)
}
