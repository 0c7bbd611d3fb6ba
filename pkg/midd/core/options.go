package core

import (
	"context"
	"log/slog"
)

type OptionKey string

const (
	InvocationOptionKey OptionKey = "invocation_options"
	LoggerKey           OptionKey = "logger"
)

type InvocationOptions struct {
	// RecordArgs adds the argument count to invocation spans.
	RecordArgs bool
}

func WithInvocationOptions(ctx context.Context, recordArgs bool) context.Context {
	return context.WithValue(ctx, InvocationOptionKey, InvocationOptions{RecordArgs: recordArgs})
}

func IsRecordArgsEnabled(ctx context.Context, defaultRecordArgs bool) bool {
	options, ok := ctx.Value(InvocationOptionKey).(InvocationOptions)
	if ok {
		return options.RecordArgs
	}
	return defaultRecordArgs
}

// WithLogger embeds the logger handlers should use for this invocation.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// Logger returns the invocation logger, or slog.Default when none is set.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
