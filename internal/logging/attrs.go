package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Attr is re-exported so callers only import this package.
type Attr = slog.Attr

func Any(key string, value any) Attr                { return slog.Any(key, value) }
func Bool(key string, value bool) Attr              { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Int(key string, value int) Attr                { return slog.Int(key, value) }
func String(key string, value string) Attr          { return slog.String(key, value) }

// Error records err under "error". A nil error is logged as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a discarding one.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Fields the caller leaves out get generic values so every warning states a
// cause, a consequence and a next step.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelWarn, msg, eventType, attrs, true)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelError, msg, eventType, attrs, false)
}

func logEvent(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr, withImpact bool) {
	if logger == nil {
		return
	}
	out := make([]Attr, 0, len(attrs)+3)
	out = append(out, attrs...)
	out = withDefault(out, FieldEventType, eventType)
	out = withDefault(out, FieldErrorHint, "check logs for details")
	if withImpact {
		out = withDefault(out, FieldImpact, "sync completed with warnings")
	}
	logger.LogAttrs(context.Background(), level, msg, out...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key }) {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}
