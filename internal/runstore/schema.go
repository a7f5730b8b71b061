package runstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in PRAGMA user_version. A fresh file reports 0.
const ledgerVersion = 1

// ErrSchemaMismatch is returned when runs.db was written by another ledger version.
var ErrSchemaMismatch = errors.New("run ledger schema version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}
	switch current {
	case ledgerVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s is at version %d, this build expects %d; remove it to start a new history",
			ErrSchemaMismatch, s.path, current, ledgerVersion)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reserve connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ledgerVersion)); err != nil {
		return fmt.Errorf("stamp ledger version: %w", err)
	}
	return nil
}
