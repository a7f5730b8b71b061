// Package runner wraps one pipeline run with the process concerns around it:
// the single-run lock, the per-run log file, the run ledger, the metrics
// textfile and the ntfy notification sent when the run ends.
//
// The pipeline itself assumes it is never run concurrently against the same
// recruitment sheet; Run enforces that with an flock on the state directory
// and fails immediately when another run holds it.
package runner
