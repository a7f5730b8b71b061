// Package report rebuilds the packets and registrations tabs of the reporting
// spreadsheet on every run.
//
// Records are grouped by type, then by instrument, and sorted by timestamp
// inside each instrument group. Each tab is cleared before it is written;
// nothing on these tabs is preserved between runs.
package report
