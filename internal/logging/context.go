package logging

import (
	"context"
	"log/slog"

	"auditionsync/internal/services"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the structured logging key for sync run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact      = "impact"
	FieldSpreadsheet = "spreadsheet"
	FieldTab         = "tab"
)

// ContextFields returns the run_id and stage attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldStage, stage))
	}
	return attrs
}

// WithContext binds the run and stage from ctx to logger. A nil logger
// yields a discarding one.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(attrs))
}
