// Package runstore records sync runs in a small SQLite ledger.
//
// Each run is inserted as running when it starts and finished with its
// status, summary JSON and error list. The ledger is history for operators
// (`auditionsync runs`), not state the pipeline reads back. Schema changes
// bump ledgerVersion in schema.go; users delete runs.db to adopt them.
package runstore
