// Package log provides a structured JSON logger singleton and an audit
// journal for tracking device and relay actions across meta-secret.
package log

import (
	"log"
	"log/slog"
	"os"
	"sync"
)

var logger *slog.Logger
var loggerMutex sync.Mutex

// Log returns a thread-safe singleton slog.Logger configured for JSON
// output. Subsequent calls return the same instance.
func Log() *slog.Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger != nil {
		return logger
	}

	level := slog.LevelInfo
	if v := os.Getenv("META_SECRET_LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	return logger
}

// Fatal logs a message and then calls os.Exit(1).
func Fatal(msg string) {
	log.Fatal(msg)
}

// FatalF logs a formatted message and then calls os.Exit(1).
func FatalF(format string, args ...any) {
	log.Fatalf(format, args...)
}

// FatalLn logs a message with a line feed and then calls os.Exit(1).
func FatalLn(args ...any) {
	log.Fatalln(args...)
}
