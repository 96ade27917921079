package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/phrazzld/task-extractor/internal/config"
)

// ParseLevel maps a configured level name (case-insensitive) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Setup initializes the application's logging system based on the provided
// configuration and sets the result as the slog default.
//
// Format "json" produces machine-readable records for CI and log shipping;
// "text" produces colourised human output for interactive runs. A nil out
// writes to stderr so stdout stays free for the record stream.
func Setup(cfg config.LogConfig, out io.Writer) (*slog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text", "":
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(out),
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// isTerminal reports whether out is a character device, which is the only
// place ANSI colour codes make sense.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
