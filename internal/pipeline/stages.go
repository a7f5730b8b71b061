package pipeline

import (
	"context"
	"log/slog"

	"auditionsync/internal/config"
	"auditionsync/internal/fetch"
	"auditionsync/internal/orders"
	"auditionsync/internal/profiles"
	"auditionsync/internal/recruitment"
	"auditionsync/internal/report"
	"auditionsync/internal/result"
	"auditionsync/internal/services/sheets"
	"auditionsync/internal/validation"
)

// Stage names used for logging context.
const (
	StageFetch       = "fetch"
	StageProfiles    = "profiles"
	StageReport      = "report"
	StageRecruitment = "recruitment"
)

// OrderFetcher produces validated orders.
type OrderFetcher interface {
	Fetch(ctx context.Context) result.Result[[]orders.Order]
}

// ProfileBuilder merges orders into profiles.
type ProfileBuilder interface {
	Build(ctx context.Context, list []orders.Order) result.Result[profiles.Build]
}

// ReportWriter rewrites the packets and registrations report.
type ReportWriter interface {
	Write(ctx context.Context, list []profiles.Profile) result.Result[report.Counts]
}

// RecruitmentUpdater reconciles profiles with the recruitment sheet.
type RecruitmentUpdater interface {
	Update(ctx context.Context, list []profiles.Profile) result.Result[recruitment.Summary]
}

// StageSet bundles the handlers the pipeline runs. Recruitment may be nil,
// in which case that stage is skipped.
type StageSet struct {
	Fetcher     OrderFetcher
	Builder     ProfileBuilder
	Report      ReportWriter
	Recruitment RecruitmentUpdater
}

// NewStageSet wires the production stages against one commerce lister and one
// spreadsheet backend.
func NewStageSet(rules *config.Rules, lister fetch.Lister, backend sheets.Backend, logger *slog.Logger) StageSet {
	set := StageSet{
		Fetcher: fetch.New(lister, validation.New(rules, logger), logger),
		Builder: profiles.NewBuilder(rules, logger),
		Report:  report.NewWriter(backend, rules, logger),
	}
	if rules.RecruitmentEnabled() {
		set.Recruitment = recruitment.NewUpdater(backend, rules, logger)
	}
	return set
}
