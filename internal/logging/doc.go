// Package logging assembles the slog loggers used by auditionsync.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag lines with the current run ID and pipeline stage.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
