// Package logging builds the diagnostic logger. Diagnostics always go to the
// supervisor's own stderr, never through the prefixing engine.
package logging

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines logger configuration.
type Config struct {
	// Verbosity is the number of -v flags: 0 shows warnings, 1 adds info,
	// 2 and above add debug output.
	Verbosity int
	Output    io.Writer
}

// Level maps a verbosity count to a zap level.
func Level(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New creates a console logger tagged with a fresh run identifier.
func New(cfg Config) *zap.Logger {
	if cfg.Output == nil {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(cfg.Output)),
		zap.NewAtomicLevelAt(Level(cfg.Verbosity)),
	)
	return zap.New(core).Named("ind").With(zap.String("run", uuid.NewString()))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}
