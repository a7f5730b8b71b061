package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auditionsync/internal/config"
	"auditionsync/internal/logging"
	"auditionsync/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	runLog := filepath.Join(t.TempDir(), "logs", "sync-1.log")

	logger, err := logging.NewFromConfig(&cfg, runLog)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello run log")

	if !strings.Contains(readLog(t, runLog), "hello run log") {
		t.Fatal("expected message in run log")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFoldsRunAndStageIntoHeader(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "3f2a9c1e-0000-4000-8000-000000000000")
	ctx = services.WithStage(ctx, "report")
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "report")
	logger.Info("rows written", logging.Int("rows", 12))

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO [report] Run 3f2a9c1e (report) - rows written") {
		t.Fatalf("unexpected header line: %q", content)
	}
	if !strings.Contains(content, "    rows: 12") {
		t.Fatalf("expected indented field, got %q", content)
	}
	if strings.Contains(content, "run_id:") {
		t.Fatalf("run id should not repeat as a field: %q", content)
	}
}

func TestConsoleLoggerJoinsStringLists(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("sync failed", logging.Any("errors", []string{"Order #1: missing customer_email", "Order #2: missing line_items"}))

	want := `    errors: "Order #1: missing customer_email; Order #2: missing line_items"`
	if content := readLog(t, logPath); !strings.Contains(content, want) {
		t.Fatalf("expected joined list, got %q", content)
	}
}

func TestJSONLoggerEmitsContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	logging.WarnWithContext(logging.WithContext(ctx, logger), "order skipped", "order_invalid")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" || entry["run_id"] != "run-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected %s to be injected: %v", key, entry)
		}
	}
}

func TestJSONLoggerFlattensDurationsAndErrors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.ErrorWithContext(logger, "sync failed", "sync_failed",
		logging.Duration("duration", 1500*time.Millisecond),
		logging.Error(errors.New("boom")),
		logging.String(logging.FieldErrorHint, "retry later"),
	)

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["duration"] != "1.5s" || entry["error"] != "boom" {
		t.Fatalf("unexpected value shapes: %v", entry)
	}
	if entry[logging.FieldErrorHint] != "retry later" || entry[logging.FieldEventType] != "sync_failed" {
		t.Fatalf("caller fields should win over defaults: %v", entry)
	}
	if _, ok := entry[logging.FieldImpact]; ok {
		t.Fatalf("errors do not carry a default impact: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCleanupOldLogsKeepsCurrentAndRecent(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "sync-old.log")
	current := filepath.Join(dir, "sync-current.log")
	recent := filepath.Join(dir, "sync-recent.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -30)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, dir, "sync-*.log", current)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected old run log removed")
	}
	for _, path := range []string{current, recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
