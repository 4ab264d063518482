package logger

import (
	"log/slog"
	"os"
	"strings"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

var (
	globalLogger *slog.Logger
	zapLogger    *zap.Logger
)

// Init initializes the global logger: a zap production core wrapped into a
// slog handler, so services can log through slog while infrastructure clients
// keep using zap directly.
func Init(levelStr string) {
	var slogLevel slog.Level
	var zapLevel zap.AtomicLevel
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		slogLevel = slog.LevelDebug
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "INFO":
		slogLevel = slog.LevelInfo
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "WARN":
		slogLevel = slog.LevelWarn
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		slogLevel = slog.LevelError
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		slogLevel = slog.LevelInfo
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
		slog.Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zapLevel
	zl, err := zapCfg.Build()
	if err != nil {
		slog.Error("Failed to build zap logger, falling back to slog JSON handler", "error", err)
		globalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
		slog.SetDefault(globalLogger)
		return
	}
	zapLogger = zl

	handler := slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// Zap returns the underlying zap logger for infrastructure clients.
func Zap() *zap.Logger {
	ensureInitialized()
	if zapLogger == nil {
		return zap.NewNop()
	}
	return zapLogger
}

// Sync flushes any buffered log entries.
func Sync() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}

func ensureInitialized() {
	if globalLogger == nil {
		Init("INFO")
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Debug(msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	Sync()
	os.Exit(1)
}
