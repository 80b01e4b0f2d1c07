package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var (
	debugLogger *zerolog.Logger
	logFile     *os.File
)

// InitLogger opens a daily log file in dir. The terminal belongs to the UI,
// so nothing is ever written to stdout or stderr.
func InitLogger(dir, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("cozy-chat-debug-%s.log", time.Now().Format("2006-01-02")))

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	SetOutput(zerolog.New(logFile).Level(lvl).With().Timestamp().Logger())
	debugLogger.Info().Msg("=== Cozy Chat Debug Log Started ===")

	return nil
}

// SetOutput replaces the logger. Tests use it to capture output.
func SetOutput(l zerolog.Logger) {
	debugLogger = &l
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Debug().Msgf(format, v...)
	}
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Info().Msgf(format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Error().Msgf(format, v...)
	}
}

// Close closes the log file
func Close() {
	if logFile != nil {
		debugLogger.Info().Msg("=== Cozy Chat Debug Log Ended ===")
		logFile.Close()
		logFile = nil
	}
	debugLogger = nil
}
