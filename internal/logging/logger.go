package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "EVLEASE_LOG_LEVEL"

// Initialize creates a new logger with the specified level writing to stdout.
// If level is empty, it checks EVLEASE_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	return initialize(level, []string{"stdout"})
}

// InitializeToFile is Initialize with output routed to a file instead of stdout.
// The TUI uses this so log lines never land on the alternate screen.
func InitializeToFile(level, path string) error {
	if path == "" {
		return Initialize(level)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return initialize(level, []string{path})
}

// InitializeFromEnv initializes the logger from the EVLEASE_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for CLI commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

func initialize(level string, outputs []string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if outputs[0] == "stdout" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
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

// LogConnection logs a connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogLeaseAction records a controller action and whether its guard let it through.
// Ignored actions are logged at debug level since they are expected UI noise.
func LogLeaseAction(action string, accepted bool, phase string, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("action", action),
		zap.Bool("accepted", accepted),
		zap.String("phase", phase),
	}, fields...)
	if accepted {
		Info("Lease action", all...)
		return
	}
	Debug("Lease action ignored", all...)
}

// LogPhaseChange logs a lease lifecycle transition
func LogPhaseChange(from, to string, daysLeft int, reason string) {
	if from == to {
		return
	}
	Info("Lease phase changed",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("days_left", daysLeft),
		zap.String("reason", reason),
	)
}

// LogAdviceExchange logs one assistant round trip
func LogAdviceExchange(model string, promptLen int, latency time.Duration, fallback bool, err error) {
	fields := []zap.Field{
		zap.String("model", model),
		zap.Int("prompt_length", promptLen),
		zap.Duration("latency", latency),
		zap.Bool("fallback", fallback),
	}
	if err != nil {
		Warn("Advice request failed", append(fields, zap.Error(err))...)
		return
	}
	Info("Advice received", fields...)
}

// LogTelemetry logs a telemetry subscriber event
func LogTelemetry(subscriber string, event string, fields ...zap.Field) {
	Info("Telemetry event", append([]zap.Field{
		zap.String("subscriber", subscriber),
		zap.String("event", event),
	}, fields...)...)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
