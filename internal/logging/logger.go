package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"auditionsync/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists "stdout", "stderr" or file paths. Empty means stdout.
	OutputPaths []string
}

type handlerFactory func(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler

var handlerFactories = map[string]handlerFactory{
	"console": newConsoleHandler,
	"json":    newJSONHandler,
}

// New builds a logger. Debug level also records the caller's file and line.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	factory, ok := handlerFactories[format]
	if !ok {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	lvl := new(slog.LevelVar)
	lvl.Set(parseLevel(opts.Level))
	return slog.New(factory(w, lvl, lvl.Level() <= slog.LevelDebug)), nil
}

// NewFromConfig creates a logger writing to stdout and, when runLogPath is
// set, to that run's log file.
func NewFromConfig(cfg *config.Config, runLogPath string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	outputs := []string{"stdout"}
	if p := strings.TrimSpace(runLogPath); p != "" {
		outputs = append(outputs, p)
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, OutputPaths: outputs})
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	normalized := strings.TrimSpace(level)
	if strings.EqualFold(normalized, "warning") {
		normalized = "warn"
	}
	if err := l.UnmarshalText([]byte(normalized)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func openOutputs(paths []string) (io.Writer, error) {
	seen := make(map[string]bool, len(paths))
	var writers []io.Writer
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			f, err := openLogFile(p)
			if err != nil {
				return nil, err
			}
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
