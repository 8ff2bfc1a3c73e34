package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fadedpez/nothanks/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// ParseLevel maps a name such as "debug" or "WARN" to a Level, falling back to INFO
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger wraps a zap sugared logger with printf-style helpers
type Logger struct {
	sugar *zap.SugaredLogger
	level Level
}

// NewLogger creates a console logger writing to stdout
func NewLogger(level Level) *Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapLevels[level]),
	)
	return NewWithCore(core, level)
}

// NewWithCore builds a Logger on an existing zap core
func NewWithCore(core zapcore.Core, level Level) *Logger {
	return &Logger{
		sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
		level: level,
	}
}

// With returns a child logger that adds key/value pairs to every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), level: l.level}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level <= DEBUG {
		l.sugar.Debugf(format, v...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level <= INFO {
		l.sugar.Infof(format, v...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	if l.level <= WARN {
		l.sugar.Warnf(format, v...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level <= ERROR {
		l.sugar.Errorf(format, v...)
	}
}

// LogError logs an error, expanding GameError fields when present
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		fields := []interface{}{"code", string(gameErr.Code), "message", gameErr.Message}
		if gameErr.Err != nil {
			fields = append(fields, "cause", gameErr.Err.Error())
		}
		l.sugar.Errorw("Game error occurred", fields...)
		return
	}
	l.sugar.Errorw("Unexpected error", "error", err.Error())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Default logger instance
var Default = NewLogger(INFO)

// SetDefault replaces the package logger, typically once in main
func SetDefault(l *Logger) {
	Default = l
}
