// Package preflight provides readiness checks for the filesystem paths and
// external services a sync depends on.
//
// The CLI "check" command runs RunAll before operators schedule the first
// sync. Service checks use the same clients as a real run, so a passing check
// means the credentials and spreadsheet layout are usable. Recruitment checks
// are skipped when no recruitment spreadsheet is configured.
package preflight
