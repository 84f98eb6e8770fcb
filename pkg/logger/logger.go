
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	s *zap.SugaredLogger
}

// New builds a logger. format "console" selects the human-readable encoder;
// anything else logs JSON. Unknown levels fall back to info.
func New(level, format string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{s: z.Sugar()}
}

// Wrap adapts an existing zap logger, e.g. zaptest or zap.NewNop in tests.
func Wrap(z *zap.Logger) *Logger { return &Logger{s: z.Sugar()} }

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger { return &Logger{s: l.s.With(kv...)} }

func (l *Logger) Infof(format string, args ...any) {
	l.s.Infof(format, args...)
}
func (l *Logger) Warnf(format string, args ...any) {
	l.s.Warnf(format, args...)
}
func (l *Logger) Errorf(format string, args ...any) {
	l.s.Errorf(format, args...)
}

func (l *Logger) Sync() { _ = l.s.Sync() }
