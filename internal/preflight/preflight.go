package preflight

import (
	"context"

	"auditionsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CommercePinger is implemented by the commerce client.
type CommercePinger interface {
	Ping(ctx context.Context) error
}

// TabLister is implemented by spreadsheet backends that can list tabs.
type TabLister interface {
	Tabs(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Probes carries the service clients used by the network checks. A nil probe
// reports its check as failed with the supplied reason.
type Probes struct {
	Commerce      CommercePinger
	CommerceError error
	Sheets        TabLister
	SheetsError   error
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, probes Probes) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckCredentialsFile(cfg.Sheets.CredentialsFile),
		CheckCommerce(ctx, probes.Commerce, probes.CommerceError),
	}

	report := cfg.Audition.Report
	results = append(results, CheckSpreadsheet(ctx, "Report spreadsheet", probes.Sheets, probes.SheetsError,
		report.SpreadsheetID, []string{report.PacketsTab, report.RegistrationsTab}))

	if cfg.RecruitmentEnabled() {
		recruitment := cfg.Audition.Recruitment
		tabs := make([]string, 0, len(recruitment.Tabs)+1)
		for _, tab := range recruitment.Tabs {
			tabs = append(tabs, tab.Name)
		}
		tabs = append(tabs, recruitment.UnsortedTab)
		results = append(results, CheckSpreadsheet(ctx, "Recruitment spreadsheet", probes.Sheets, probes.SheetsError,
			recruitment.SpreadsheetID, tabs))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
