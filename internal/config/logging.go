package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewLogger creates a text logger on stderr tagged with the binary name.
// The HTTP server uses this directly; the MCP binary layers a JSON file
// sink on top via SetupLogger.
func NewLogger(binary string, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", binary)
}

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// The MCP binary runs on stdio transport, so stdout must stay clean; the
// file sink keeps a machine-readable record across client sessions.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(binary, logFile string, level slog.Level) (*slog.Logger, func() error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return NewLogger(binary, level), func() error { return nil }
	}

	logger := dualLogger(os.Stderr, file, level).With("service", binary)

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a dual-output logger with custom writers
// (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	return dualLogger(stderr, file, level)
}

func dualLogger(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
