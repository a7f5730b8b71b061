package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes a header line per record and one indented line per
// field:
//
//	2026-03-01T10:00:00Z INFO [report] Run 3f2a9c1e (report) - rows written
//	    rows: 12
//
// Component, run ID and stage go into the header rather than the field list.
// Attributes bound with WithAttrs are flattened once, when bound.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string // dotted group path, with trailing dot
	bound     []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = appendFields(append([]field(nil), h.bound...), h.prefix, attrs)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	all := append([]field(nil), h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		all = appendFields(all, h.prefix, []slog.Attr{a})
		return true
	})

	var component, runID, stage string
	var rest []field
	for _, f := range lastWins(all) {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldRunID:
			runID = f.value.String()
		case FieldStage:
			stage = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	b.WriteString(" " + levelLabel(r.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	if subject := headerSubject(runID, stage); subject != "" {
		b.WriteString(" " + subject)
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" - " + msg)
	if h.addSource {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
	for _, f := range rest {
		b.WriteString("    " + f.key + ": " + consoleValue(f.value) + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// headerSubject keeps only the first block of the run ID so lines stay narrow.
func headerSubject(runID, stage string) string {
	runID, _, _ = strings.Cut(strings.TrimSpace(runID), "-")
	stage = strings.TrimSpace(stage)
	switch {
	case runID == "":
		return stage
	case stage == "":
		return "Run " + runID
	default:
		return "Run " + runID + " (" + stage + ")"
	}
}

func appendFields(dst []field, prefix string, attrs []slog.Attr) []field {
	for _, a := range attrs {
		if a.Equal(slog.Attr{}) {
			continue
		}
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			inner := prefix
			if a.Key != "" {
				inner += a.Key + "."
			}
			dst = appendFields(dst, inner, v.Group())
			continue
		}
		dst = append(dst, field{key: prefix + a.Key, value: v})
	}
	return dst
}

// lastWins drops earlier duplicates of a key, keeping first-seen order.
func lastWins(fields []field) []field {
	pos := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := pos[f.key]; ok {
			out[i] = f
			continue
		}
		pos[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func consoleValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		if v.Time().IsZero() {
			return `""`
		}
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		switch val := v.Any().(type) {
		case error:
			s = val.Error()
		case []string:
			s = strings.Join(val, "; ")
		default:
			s = fmt.Sprint(val)
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
