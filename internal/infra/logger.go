package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NewLogger builds the process-wide slog logger and installs it as the
// default. Output goes to stderr and, when workDir is non-empty, to a log
// file under it as well.
func NewLogger(level, workDir string) (*slog.Logger, error) {
	var out io.Writer = os.Stderr

	if workDir != "" {
		if err := EnsureDir(workDir); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(filepath.Join(workDir, "seilor.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stderr, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(level)})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
