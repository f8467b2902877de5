package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-site-export/export"
)

// slogLogger adapts a slog.Logger to export.Logger.
type slogLogger struct {
	logger *slog.Logger
}

var _ export.Logger = slogLogger{}

func newLogger(logger *slog.Logger) slogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

func (l slogLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l slogLogger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l slogLogger) Warnf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l slogLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l slogLogger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, args...))
}
