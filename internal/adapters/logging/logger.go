// Package logging builds the zap logger and adapts it to common.ProcessLogger.
package logging

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

const persistTimeout = 2 * time.Second

// New builds a zap logger from configuration; verbose forces debug level
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Output != "" {
		zcfg.OutputPaths = []string{cfg.Output}
		zcfg.ErrorOutputPaths = []string{cfg.Output}
	}
	zcfg.DisableCaller = !cfg.IncludeCaller
	zcfg.Sampling = nil

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ProcessLogger writes process log lines to zap and, when a sink is set,
// to the process_logs table
type ProcessLogger struct {
	logger    *zap.Logger
	processID string
	sink      process.LogRepository
}

var _ common.ProcessLogger = (*ProcessLogger)(nil)

// NewProcessLogger tags every entry with processID. sink may be nil.
func NewProcessLogger(logger *zap.Logger, processID string, sink process.LogRepository) *ProcessLogger {
	return &ProcessLogger{
		logger:    logger.With(zap.String("process_id", processID)),
		processID: processID,
		sink:      sink,
	}
}

// Log implements common.ProcessLogger
func (l *ProcessLogger) Log(level, message string, metadata map[string]interface{}) {
	l.logger.Log(zapLevel(level), message, fields(metadata)...)

	if l.sink == nil || level == common.LevelDebug {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := l.sink.Log(ctx, l.processID, level, message, metadata); err != nil {
		l.logger.Warn("Failed to persist log entry", zap.Error(err))
	}
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case common.LevelDebug:
		return zapcore.DebugLevel
	case common.LevelWarn:
		return zapcore.WarnLevel
	case common.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// fields converts metadata to zap fields in key order
func fields(metadata map[string]interface{}) []zap.Field {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, metadata[k]))
	}
	return out
}
