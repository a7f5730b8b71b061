package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const defaultPoll = 250 * time.Millisecond

// Last returns up to n trailing lines of path and the offset just past the
// last complete line. n <= 0 returns every line. A missing file yields no
// lines and offset 0.
func Last(path string, n int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var (
		ring   []string
		next   int
		count  int
		all    []string
		offset int64
	)
	if n > 0 {
		ring = make([]string, n)
	}
	err = scanLines(file, func(line string, end int64) {
		offset = end
		if n <= 0 {
			all = append(all, line)
			return
		}
		ring[next] = line
		next = (next + 1) % n
		if count < n {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}
	if n <= 0 {
		return all, offset, nil
	}

	lines := make([]string, count)
	start := (next - count + n) % n
	for i := range count {
		lines[i] = ring[(start+i)%n]
	}
	return lines, offset, nil
}

// From returns the complete lines written at or after offset. When the file
// is shorter than offset it was truncated or replaced and is read from 0.
func From(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	start := offset
	var lines []string
	err = scanLines(file, func(line string, consumed int64) {
		lines = append(lines, line)
		offset = start + consumed
	})
	return lines, offset, err
}

// Follow emits lines appended after offset until ctx is done. poll <= 0 uses
// a 250ms interval. Cancellation is not an error.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		lines, next, err := From(path, offset)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scanLines calls fn for each newline-terminated line with the byte count
// consumed so far. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(line string, consumed int64)) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			fn(trimNewline(line), consumed)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read log file: %w", err)
	}
}

func trimNewline(line string) string {
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
