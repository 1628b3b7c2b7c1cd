// Package logger provides structured logging using zap.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/wowobj/internal/config"
)

// Logger setup errors.
var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// Log is the global logger instance. It discards everything until Init is
// called.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

// Rotated log files are kept for a week.
const maxAgeDays = 7

// Init replaces the global logger with one built from cfg. Console entries
// go to stderr so the tree and info output on stdout stays clean.
func Init(cfg config.LoggingConfig) error {
	l, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	Log = l
	Sugar = l.Sugar()
	return nil
}

// New builds a logger writing to console and, when cfg names a log file, to
// a rotating file. A nil console writes to the file only.
func New(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if console != nil {
		enc, err := newEncoder(cfg.Format, zapcore.TimeEncoderOfLayout("15:04:05"))
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(console), level))
	}

	if cfg.LogFile != "" {
		enc, err := newEncoder(cfg.Format, zapcore.ISO8601TimeEncoder)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotatingFile(cfg)), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func rotatingFile(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     maxAgeDays,
		LocalTime:  true,
	}
}

func newEncoder(format string, encodeTime zapcore.TimeEncoder) (zapcore.Encoder, error) {
	ec := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       encodeTime,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	switch format {
	case "", "console":
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(ec), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// parseLevel converts a config level to zapcore.Level. Empty means info.
func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// With returns a child of the global logger carrying fields on every entry.
func With(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
