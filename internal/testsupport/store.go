package testsupport

import (
	"testing"

	"auditionsync/internal/config"
	"auditionsync/internal/runstore"
)

// MustOpenLedger opens the run ledger for cfg and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
