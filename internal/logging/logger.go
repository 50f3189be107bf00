// Package logging configures the structured logger shared by the solver and
// the command line. Components log through the go-logr API and receive their
// logger from the context; zap is the backend.
package logging

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr.Logger.V.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// Options selects the level and encoding of the process logger.
type Options struct {
	// Level is one of "info", "debug" or "trace".
	Level string
	// Format is "json" or "console".
	Format string
}

// Log is the process-wide logger used when no logger is carried by a context.
var Log = logr.Discard()

// NewLogger builds a zap-backed logr.Logger from opts.
func NewLogger(opts Options) (logr.Logger, error) {
	verbosity, err := parseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), err
	}

	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q", opts.Format)
	}
	// logr verbosity n maps to zap level -n.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("building zap logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// SetLogger replaces the process-wide logger.
func SetLogger(l logr.Logger) {
	Log = l
}

// NewTestLogger installs a development logger at TRACE verbosity and returns it.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	l := zapr.NewLogger(zl)
	SetLogger(l)
	return l
}

// FromContext returns the logger carried by ctx, falling back to Log.
func FromContext(ctx context.Context) logr.Logger {
	if l, err := logr.FromContext(ctx); err == nil {
		return l
	}
	return Log
}

// IntoContext returns a copy of ctx carrying l.
func IntoContext(ctx context.Context, l logr.Logger) context.Context {
	return logr.NewContext(ctx, l)
}

func parseLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	case "trace":
		return TRACE, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
