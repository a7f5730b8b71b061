// Package logs locates per-run log files and tails them for the CLI.
//
// Tail reads with bounded memory, so "last N lines" works on large logs.
// Follow polls for appended lines and only emits complete ones; a log that
// shrinks is reread from the start. Callers supply a context to stop polling.
package logs
