package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Run is one ledger row.
type Run struct {
	ID          string
	Status      Status
	StartedAt   time.Time
	FinishedAt  *time.Time
	SummaryJSON string
	Errors      []string
}

// Duration returns the run's elapsed time, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = "id, status, started_at, finished_at, summary_json, errors_json"

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Begin records a run as running.
func (s *Store) Begin(ctx context.Context, id string, started time.Time) error {
	if id == "" {
		return errors.New("run id is required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, StatusRunning, started.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the outcome of a run. summary is encoded as JSON; a nil
// summary leaves the column empty.
func (s *Store) Finish(ctx context.Context, id string, status Status, finished time.Time, summary any, errs []string) error {
	var summaryJSON any
	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		summaryJSON = string(data)
	}
	var errorsJSON any
	if len(errs) > 0 {
		data, err := json.Marshal(errs)
		if err != nil {
			return fmt.Errorf("encode errors: %w", err)
		}
		errorsJSON = string(data)
	}

	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, summary_json = ?, errors_json = ?, error_count = ? WHERE id = ?`,
		status, finished.UTC().Format(timeLayout), summaryJSON, errorsJSON, len(errs), id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get returns one run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.exec(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// MarkAbandoned fails runs left in the running state, for example after a
// crash. It returns how many runs were updated.
func (s *Store) MarkAbandoned(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, errors_json = ?, error_count = 1 WHERE status = ?`,
		StatusFailed, now.UTC().Format(timeLayout), `["run did not finish"]`, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		summary     sql.NullString
		errorsRaw   sql.NullString
	)
	if err := scanner.Scan(&id, &status, &startedRaw, &finishedRaw, &summary, &errorsRaw); err != nil {
		return nil, err
	}

	run := &Run{ID: id, Status: Status(status), SummaryJSON: summary.String}
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	if errorsRaw.Valid && errorsRaw.String != "" {
		if err := json.Unmarshal([]byte(errorsRaw.String), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode errors for run %s: %w", id, err)
		}
	}
	return run, nil
}

// History is what the ledger knows about runs other than the current one.
type History struct {
	Counts      map[Status]int
	LastSuccess *Run
}

// History counts finished runs by status and returns the newest succeeded
// run, leaving out exclude. Metrics are rebuilt from it because each CLI
// process starts with an empty registry.
func (s *Store) History(ctx context.Context, exclude string) (History, error) {
	h := History{Counts: map[Status]int{}}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM runs WHERE id != ? AND status != ? GROUP BY status`,
		exclude, StatusRunning)
	if err != nil {
		return h, fmt.Errorf("count runs: %w", err)
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return h, fmt.Errorf("scan run counts: %w", err)
		}
		h.Counts[Status(status)] = n
	}
	// Close before the next query: the store holds a single connection.
	iterErr := rows.Err()
	if err := rows.Close(); err != nil && iterErr == nil {
		iterErr = err
	}
	if iterErr != nil {
		return h, fmt.Errorf("count runs: %w", iterErr)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id != ? AND status = ? ORDER BY started_at DESC LIMIT 1`,
		exclude, StatusSucceeded)
	last, err := scanRun(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return h, fmt.Errorf("last succeeded run: %w", err)
	default:
		h.LastSuccess = last
	}
	return h, nil
}
