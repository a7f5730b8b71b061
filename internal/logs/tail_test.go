package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"auditionsync/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("expected offset 6, got %d", offset)
	}

	all, _, err := logs.Last(path, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected every line, got %#v (%v)", all, err)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %#v %d %v", lines, offset, err)
	}
}

func TestFromHoldsPartialLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	writeLog(t, path, "one\ntw")

	lines, offset, err := logs.From(path, 0)
	if err != nil {
		t.Fatalf("From: %v", err)
	}
	if len(lines) != 1 || lines[0] != "one" || offset != 4 {
		t.Fatalf("unexpected read %#v offset %d", lines, offset)
	}

	appendLog(t, path, "o\r\n")
	lines, offset, err = logs.From(path, offset)
	if err != nil {
		t.Fatalf("From: %v", err)
	}
	if len(lines) != 1 || lines[0] != "two" || offset != 9 {
		t.Fatalf("unexpected read %#v offset %d", lines, offset)
	}
}

func TestFromRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	writeLog(t, path, "fresh\n")

	lines, _, err := logs.From(path, 100)
	if err != nil || len(lines) != 1 || lines[0] != "fresh" {
		t.Fatalf("expected reread from start, got %#v (%v)", lines, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	writeLog(t, path, "start\n")
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	appendLog(t, path, "next\n")
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "next" {
		t.Fatalf("unexpected followed lines %#v", got)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := filepath.Join(dir, logs.RunFileName(started, "aaaaaaaa-1111"))
	newer := filepath.Join(dir, logs.RunFileName(started.Add(time.Hour), "bbbbbbbb-2222"))
	writeLog(t, older, "old\n")
	writeLog(t, newer, "new\n")

	if got, err := logs.Locate(dir, "aaaaaaaa-1111"); err != nil || got != older {
		t.Fatalf("expected %s, got %s (%v)", older, got, err)
	}
	if got, err := logs.Locate(dir, ""); err != nil || got != newer {
		t.Fatalf("expected newest log %s, got %s (%v)", newer, got, err)
	}
	if _, err := logs.Locate(dir, "cccccccc"); !errors.Is(err, logs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := os.Symlink(older, filepath.Join(dir, logs.CurrentName)); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if got, err := logs.Locate(dir, ""); err != nil || got != filepath.Join(dir, logs.CurrentName) {
		t.Fatalf("expected pointer, got %s (%v)", got, err)
	}
}
