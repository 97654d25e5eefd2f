// Package logging builds the zap logger used across nb.
//
// Output goes to the command's stderr in console form so diagnostics never mix
// with command output on stdout.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps normal command output free of log lines.
const DefaultLevel = "warn"

// Field names shared by all components.
const (
	FieldDocID   = "docId"
	FieldKey     = "key"
	FieldPath    = "path"
	FieldBackend = "backend"
	FieldCommand = "command"
)

// ParseLevel parses a level name ("debug", "info", "warn", "error").
// An empty name yields [DefaultLevel].
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		name = DefaultLevel
	}

	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)

	return zap.New(core), nil
}
