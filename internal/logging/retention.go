package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs deletes files in dir matching pattern whose modification
// time is more than retentionDays old. Non-positive retention keeps
// everything; keep names a file that survives regardless of age.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, dir, pattern, keep string) {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return
	}
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep = absOrEmpty(keep)

	for _, path := range matches {
		if absOrEmpty(path) == keep {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "could not prune old run log", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check ownership of paths.log_dir"),
				String(FieldImpact, "old run log remains on disk"),
			)
			continue
		}
		if logger != nil {
			logger.Debug("pruned run log", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
}

func absOrEmpty(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
