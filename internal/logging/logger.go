package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Keys whose values are redacted before any handler sees them.
const (
	KeyZIP         = "zip"
	KeyDiagnosisID = "diagnosis_id"
)

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger writing to w. format is "json" or "console".
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr,
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup configures the process-wide logger on stderr.
func Setup(level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := New(os.Stderr, lvl, format)
	slog.SetDefault(logger)
	return logger, nil
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case KeyZIP:
		return slog.String(a.Key, RedactZIP(a.Value.String()))
	case KeyDiagnosisID:
		return slog.String(a.Key, RedactID(a.Value.String()))
	}
	return a
}

// RedactZIP keeps the last two digits of a ZIP code.
func RedactZIP(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) < 2 {
		return "****"
	}
	return "****" + zip[len(zip)-2:]
}

// RedactID keeps the first eight characters of an identifier.
func RedactID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
