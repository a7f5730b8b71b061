package pipeline

import (
	"context"
	"log/slog"
	"time"

	"auditionsync/internal/logging"
	"auditionsync/internal/orders"
	"auditionsync/internal/profiles"
	"auditionsync/internal/recruitment"
	"auditionsync/internal/report"
	"auditionsync/internal/result"
	"auditionsync/internal/services"
)

// Summary is the outcome of a successful run.
type Summary struct {
	OrdersProcessed    int      `json:"orders_processed"`
	ProfilesCreated    int      `json:"profiles_created"`
	Registrations      int      `json:"registrations"`
	Packets            int      `json:"packets"`
	Issues             []string `json:"issues,omitempty"`
	ReportUpdated      bool     `json:"report_updated"`
	RecruitmentUpdated bool     `json:"recruitment_updated"`
	RecruitmentTabs    int      `json:"recruitment_tabs,omitempty"`
	Unsorted           int      `json:"unsorted,omitempty"`
}

// Pipeline runs the stages in order.
type Pipeline struct {
	stages StageSet
	logger *slog.Logger
}

// New constructs a pipeline.
func New(stages StageSet, logger *slog.Logger) *Pipeline {
	return &Pipeline{stages: stages, logger: logging.NewComponentLogger(logger, "pipeline")}
}

// Run executes one sync.
func (p *Pipeline) Run(ctx context.Context) result.Result[Summary] {
	var summary Summary

	fetched := runStage(ctx, p, StageFetch, func(ctx context.Context) result.Result[[]orders.Order] {
		return p.stages.Fetcher.Fetch(ctx)
	})
	built := result.AndThen(fetched, func(list []orders.Order) result.Result[profiles.Build] {
		return runStage(ctx, p, StageProfiles, func(ctx context.Context) result.Result[profiles.Build] {
			return p.stages.Builder.Build(ctx, list)
		})
	})
	reported := result.AndThen(built, func(b profiles.Build) result.Result[[]profiles.Profile] {
		summary.OrdersProcessed = b.OrdersProcessed
		summary.ProfilesCreated = len(b.Profiles)
		summary.Registrations = len(b.Registrations)
		summary.Packets = len(b.Packets)
		for _, issue := range b.Issues {
			summary.Issues = append(summary.Issues, issue.String())
		}
		counts := runStage(ctx, p, StageReport, func(ctx context.Context) result.Result[report.Counts] {
			return p.stages.Report.Write(ctx, b.Profiles)
		})
		return result.Map(counts, func(report.Counts) []profiles.Profile {
			summary.ReportUpdated = true
			return b.Profiles
		})
	})
	return result.AndThen(reported, func(list []profiles.Profile) result.Result[Summary] {
		if p.stages.Recruitment == nil {
			logging.WithContext(ctx, p.logger).Debug("recruitment spreadsheet not configured; skipping recruitment stage")
			return result.Success(summary)
		}
		updated := runStage(ctx, p, StageRecruitment, func(ctx context.Context) result.Result[recruitment.Summary] {
			return p.stages.Recruitment.Update(ctx, list)
		})
		return result.Map(updated, func(r recruitment.Summary) Summary {
			summary.RecruitmentUpdated = true
			summary.RecruitmentTabs = r.TabsUpdated
			summary.Unsorted = r.Unsorted
			return summary
		})
	})
}

// runStage stamps the stage onto the context and logs its start and outcome.
func runStage[T any](ctx context.Context, p *Pipeline, stage string, fn func(context.Context) result.Result[T]) result.Result[T] {
	stageCtx := services.WithStage(ctx, stage)
	logger := logging.WithContext(stageCtx, p.logger)
	start := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	res := fn(stageCtx)
	if res.Failed() {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.Duration("stage_duration", time.Since(start)),
			logging.Any("errors", res.Errors()),
		)
		return res
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return res
}
