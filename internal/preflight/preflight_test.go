package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auditionsync/internal/services"
	"auditionsync/internal/testsupport"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentialsFile(t *testing.T) {
	if r := CheckCredentialsFile(""); !r.Passed {
		t.Fatalf("expected default credentials to pass, got %s", r.Detail)
	}
	if r := CheckCredentialsFile(filepath.Join(t.TempDir(), "missing.json")); r.Passed {
		t.Fatal("expected failure for missing file")
	}
	f := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(f, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if r := CheckCredentialsFile(f); !r.Passed {
		t.Fatalf("expected readable file to pass, got %s", r.Detail)
	}
}

func TestCheckCommerce(t *testing.T) {
	if r := CheckCommerce(context.Background(), stubPinger{}, nil); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}

	err := services.Wrap(services.ErrRateLimited, "commerce", "GET orders", "", nil)
	r := CheckCommerce(context.Background(), stubPinger{err: err}, nil)
	if r.Passed || !strings.HasPrefix(r.Detail, "rate_limited: ") {
		t.Fatalf("expected classified failure, got %+v", r)
	}

	r = CheckCommerce(context.Background(), nil, errors.New("bad base url"))
	if r.Passed || !strings.Contains(r.Detail, "bad base url") {
		t.Fatalf("expected construction error in detail, got %+v", r)
	}
}

func TestCheckSpreadsheetReportsMissingTabs(t *testing.T) {
	backend := testsupport.NewMemorySheets()
	backend.Seed("sheet", "Packets", nil)

	r := CheckSpreadsheet(context.Background(), "Report", backend, nil, "sheet", []string{"Packets", "Registrations"})
	if r.Passed || r.Detail != `missing tabs: "Registrations"` {
		t.Fatalf("unexpected result %+v", r)
	}

	r = CheckSpreadsheet(context.Background(), "Report", backend, nil, "unknown", []string{"Packets"})
	if r.Passed {
		t.Fatal("expected failure for unknown spreadsheet")
	}

	r = CheckSpreadsheet(context.Background(), "Report", backend, nil, "", nil)
	if r.Passed || r.Detail != "spreadsheet_id missing" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, Probes{})
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecruitment())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	backend := testsupport.NewMemorySheets()
	for _, tab := range []string{"Packets", "Registrations"} {
		backend.Seed(testsupport.ReportSpreadsheet, tab, nil)
	}
	for _, tab := range []string{"Snare", "Front Ensemble", "UNSORTED"} {
		backend.Seed(testsupport.RecruitmentSheet, tab, nil)
	}

	results := RunAll(context.Background(), cfg, Probes{Commerce: stubPinger{}, Sheets: backend})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("expected no failures")
	}
}

func TestRunAll_SkipsRecruitmentWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg, Probes{})
	for _, r := range results {
		if r.Name == "Recruitment spreadsheet" {
			t.Fatal("recruitment check should be skipped")
		}
	}
	// Directories are not created and no probes are supplied.
	if !Failed(results) {
		t.Fatal("expected failures without directories or clients")
	}
}
