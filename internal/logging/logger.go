package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

const (
	// LogLevelEnvVar controls logging verbosity. When unset or empty, logging is
	// silent. Valid values: "debug", "info", "warn", "error".
	LogLevelEnvVar = "PREP_LOG_LEVEL"

	// LogFileEnvVar redirects log output to a file. The interactive UI owns the
	// terminal, so logs written to stdout would corrupt the screen.
	LogFileEnvVar = "PREP_LOG_FILE"
)

// Options configures the global logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means silent.
	Level string
	// File receives log output. Empty means stderr.
	File string
	// Console selects the human-readable encoder; false selects JSON.
	Console bool
}

// Initialize creates a new logger with the specified level.
// If level is empty, it checks PREP_LOG_LEVEL. If neither is set, logging is
// disabled (silent mode).
func Initialize(level string) error {
	return InitializeWithOptions(Options{Level: level, Console: true})
}

// InitializeWithOptions builds the global logger from opts, filling empty
// fields from the environment.
func InitializeWithOptions(opts Options) error {
	if opts.Level == "" {
		opts.Level = os.Getenv(LogLevelEnvVar)
	}
	if opts.File == "" {
		opts.File = os.Getenv(LogFileEnvVar)
	}

	if opts.Level == "" {
		logger = zap.NewNop()
		return nil
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if opts.Console {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		// Color codes only make sense on a terminal
		if opts.File == "" {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	output := "stderr"
	if opts.File != "" {
		output = opts.File
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(opts.Level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from PREP_LOG_LEVEL and
// PREP_LOG_FILE. Silent unless the level is set.
func InitializeFromEnv() error {
	return Initialize("")
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized, so CLI output stays clean
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogTransition logs a controller state change.
func LogTransition(sessionID, event, from, to string) {
	Debug("Session transition",
		zap.String("session_id", sessionID),
		zap.String("event", event),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LogDiscarded logs an operation result that arrived after the session moved on.
func LogDiscarded(sessionID, op string, ticketGen, currentGen uint64) {
	Info("Discarding stale result",
		zap.String("session_id", sessionID),
		zap.String("op", op),
		zap.Uint64("ticket_generation", ticketGen),
		zap.Uint64("current_generation", currentGen),
	)
}

// LogHTTPRequest logs an outgoing or incoming HTTP request
func LogHTTPRequest(sessionID, method, url string, bodyBytes int64) {
	Info("HTTP request",
		zap.String("session_id", sessionID),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int64("body_bytes", bodyBytes),
	)
}

// LogHTTPResponse logs an HTTP response with its round-trip time
func LogHTTPResponse(sessionID, url string, statusCode int, elapsed time.Duration) {
	Info("HTTP response",
		zap.String("session_id", sessionID),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Duration("elapsed", elapsed),
	)
}

// LogRawBytes logs the head of a payload (useful for debugging bad responses)
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func asciiDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	// Limit to first 256 bytes
	if len(data) > 256 {
		data = data[:256]
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
