package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"auditionsync/internal/textutil"
)

// CurrentName is the pointer in the log directory that tracks the newest run log.
const CurrentName = "auditionsync.log"

// RunGlob matches every per-run log file.
const RunGlob = "sync-*.log"

// ErrNotFound is returned when no log file matches.
var ErrNotFound = errors.New("log file not found")

// RunFileName names the log for a run started at started. The short run ID
// suffix lets Locate find it again.
func RunFileName(started time.Time, runID string) string {
	return fmt.Sprintf("sync-%s-%s.log", started.UTC().Format("20060102T150405Z"), shortID(runID))
}

// Locate returns the log for runID, or the newest run log when runID is empty.
func Locate(logDir, runID string) (string, error) {
	if runID == "" {
		current := filepath.Join(logDir, CurrentName)
		if _, err := os.Stat(current); err == nil {
			return current, nil
		}
		return newest(logDir, RunGlob)
	}
	return newest(logDir, "sync-*-"+shortID(runID)+".log")
}

// newest relies on the timestamp prefix sorting lexically.
func newest(logDir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(logDir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob logs: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNotFound, logDir)
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

func shortID(runID string) string {
	return textutil.FileToken(runID, 8)
}
