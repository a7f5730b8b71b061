package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"auditionsync/internal/config"
	"auditionsync/internal/fetch"
	"auditionsync/internal/logging"
	"auditionsync/internal/logs"
	"auditionsync/internal/metrics"
	"auditionsync/internal/notifications"
	"auditionsync/internal/pipeline"
	"auditionsync/internal/result"
	"auditionsync/internal/runstore"
	"auditionsync/internal/services"
	"auditionsync/internal/services/commerce"
	"auditionsync/internal/services/sheets"
)

// ledgerKeep is how many runs the ledger retains.
const ledgerKeep = 500

// ErrBusy is returned when another sync holds the run lock.
var ErrBusy = errors.New("another sync is already running")

// Options configures one run. Lister, Backend and Notifier replace the
// production collaborators when set.
type Options struct {
	LogLevel string
	Logger   *slog.Logger
	Lister   fetch.Lister
	Backend  sheets.Backend
	Notifier notifications.Service
	Now      func() time.Time
}

// Outcome describes a finished run. Result holds the pipeline outcome; Run
// only returns an error when the run could not be started or recorded.
type Outcome struct {
	RunID    string
	LogPath  string
	Started  time.Time
	Duration time.Duration
	Result   result.Result[pipeline.Summary]
}

// Run executes one sync.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Outcome, error) {
	if cfg == nil {
		return Outcome{}, fmt.Errorf("config is required")
	}
	if err := cfg.ValidateForSync(); err != nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "runner", "validate config", "", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Outcome{}, fmt.Errorf("ensure directories: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Outcome{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Outcome{}, fmt.Errorf("%w (lock %s)", ErrBusy, cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	started := now()
	runID := uuid.NewString()
	out := Outcome{RunID: runID, Started: started}

	logger := opts.Logger
	if logger == nil {
		out.LogPath = filepath.Join(cfg.Paths.LogDir, logs.RunFileName(started, runID))
		logCfg := *cfg
		if opts.LogLevel != "" {
			logCfg.Logging.Level = opts.LogLevel
		}
		logger, err = logging.NewFromConfig(&logCfg, out.LogPath)
		if err != nil {
			return out, fmt.Errorf("init logger: %w", err)
		}
		if err := ensureCurrentLogPointer(cfg.Paths.LogDir, out.LogPath); err != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to update auditionsync.log link: %v\n", err)
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, logs.RunGlob, out.LogPath)
	}
	ctx = services.WithRunID(ctx, runID)
	logger = logging.NewComponentLogger(logger, "runner")
	runLogger := logging.WithContext(ctx, logger)

	ledger, err := runstore.Open(cfg)
	if err != nil {
		return out, fmt.Errorf("open run ledger: %w", err)
	}
	defer ledger.Close()
	if n, err := ledger.MarkAbandoned(ctx, started); err != nil {
		return out, err
	} else if n > 0 {
		logging.WarnWithContext(runLogger, "earlier runs never finished", "runs_abandoned",
			logging.Int("runs", int(n)),
			logging.String(logging.FieldImpact, "those runs are recorded as failed"),
			logging.String(logging.FieldErrorHint, "check the previous run log for a crash"),
		)
	}
	if err := ledger.Begin(ctx, runID, started); err != nil {
		return out, err
	}

	runLogger.Info("sync started",
		logging.String(logging.FieldEventType, "sync_start"),
		logging.Bool("recruitment_enabled", cfg.RecruitmentEnabled()),
		logging.String("log_file", out.LogPath),
	)
	out.Result = execute(ctx, cfg, opts, logger)
	finished := now()
	out.Duration = finished.Sub(started)

	status := runstore.StatusSucceeded
	var summary any
	if out.Result.Failed() {
		status = runstore.StatusFailed
		logging.ErrorWithContext(runLogger, "sync failed", "sync_failed",
			logging.Any("errors", out.Result.Errors()),
			logging.Duration("duration", out.Duration),
		)
	} else {
		summary = out.Result.Data()
		runLogger.Info("sync completed",
			logging.String(logging.FieldEventType, "sync_complete"),
			logging.Duration("duration", out.Duration),
		)
	}
	if err := ledger.Finish(ctx, runID, status, finished, summary, out.Result.Errors()); err != nil {
		return out, fmt.Errorf("record run: %w", err)
	}
	if _, err := ledger.Prune(ctx, ledgerKeep); err != nil {
		runLogger.Debug("run ledger prune failed", logging.Error(err))
	}

	recordMetrics(ctx, cfg, ledger, runLogger, out, finished)
	notify(ctx, cfg, opts.Notifier, runLogger, out)
	return out, nil
}

func notify(ctx context.Context, cfg *config.Config, svc notifications.Service, logger *slog.Logger, out Outcome) {
	if svc == nil {
		svc = notifications.NewService(cfg)
	}
	var err error
	if out.Result.Failed() {
		err = svc.NotifySyncFailed(ctx, out.RunID, out.Result.Errors())
	} else {
		s := out.Result.Data()
		err = svc.NotifySyncCompleted(ctx, notifications.RunSummary{
			RunID:         out.RunID,
			Duration:      out.Duration,
			Orders:        s.OrdersProcessed,
			Profiles:      s.ProfilesCreated,
			Packets:       s.Packets,
			Registrations: s.Registrations,
			Issues:        len(s.Issues),
			Unsorted:      s.Unsorted,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "run notification not delivered", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "operators were not alerted about this run"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
		)
	}
}

// execute builds the collaborators and runs the pipeline. Collaborator
// construction failures become pipeline failures so they reach the ledger.
func execute(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) result.Result[pipeline.Summary] {
	lister := opts.Lister
	if lister == nil {
		client, err := commerce.NewClient(commerce.Config{
			BaseURL:           cfg.Commerce.BaseURL,
			APIKey:            cfg.Commerce.APIKey,
			UserAgent:         cfg.Commerce.UserAgent,
			TimeoutSeconds:    cfg.Commerce.TimeoutSeconds,
			RequestsPerSecond: cfg.Commerce.RequestsPerSecond,
		})
		if err != nil {
			return result.Failuref[pipeline.Summary]("Could not initialize the commerce client: %v", err)
		}
		lister = client
	}
	backend := opts.Backend
	if backend == nil {
		google, err := sheets.NewGoogleBackend(ctx, sheets.GoogleConfig{
			CredentialsFile: cfg.Sheets.CredentialsFile,
			TimeoutSeconds:  cfg.Sheets.TimeoutSeconds,
		})
		if err != nil {
			return result.Failuref[pipeline.Summary]("Could not initialize the spreadsheet client: %v", err)
		}
		backend = google
	}
	stages := pipeline.NewStageSet(cfg.Rules(), lister, backend, logger)
	return pipeline.New(stages, logger).Run(ctx)
}

func recordMetrics(ctx context.Context, cfg *config.Config, ledger *runstore.Store, logger *slog.Logger, out Outcome, finished time.Time) {
	if cfg.Metrics.TextfilePath == "" {
		return
	}
	m := metrics.New()
	history, err := ledger.History(ctx, out.RunID)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable for metrics", "metrics_history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run counters and last-success gauges reflect this run only"),
		)
	} else {
		m.Restore(priorMetrics(history, logger))
	}

	current := metrics.Outcome{Succeeded: out.Result.OK(), Duration: out.Duration, FinishedAt: finished}
	if out.Result.OK() {
		current = summaryOutcome(out.Result.Data(), finished)
		current.Duration = out.Duration
	}
	m.Observe(current)
	if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "scraped metrics are stale"),
			logging.String(logging.FieldErrorHint, "check metrics.textfile_path permissions"),
		)
	}
}

func priorMetrics(h runstore.History, logger *slog.Logger) metrics.Prior {
	prior := metrics.Prior{Runs: make(map[string]int, len(h.Counts))}
	for status, n := range h.Counts {
		prior.Runs[string(status)] = n
	}
	last := h.LastSuccess
	if last == nil || last.FinishedAt == nil {
		return prior
	}
	var s pipeline.Summary
	if err := json.Unmarshal([]byte(last.SummaryJSON), &s); err != nil {
		logger.Debug("last successful run summary unreadable", logging.String("prior_run_id", last.ID), logging.Error(err))
		return prior
	}
	o := summaryOutcome(s, *last.FinishedAt)
	prior.LastSuccess = &o
	return prior
}

func summaryOutcome(s pipeline.Summary, finished time.Time) metrics.Outcome {
	return metrics.Outcome{
		Succeeded:     true,
		Orders:        s.OrdersProcessed,
		Profiles:      s.ProfilesCreated,
		Packets:       s.Packets,
		Registrations: s.Registrations,
		Issues:        len(s.Issues),
		Unsorted:      s.Unsorted,
		FinishedAt:    finished,
	}
}

// ensureCurrentLogPointer points the current-log link in logDir at the newest run log.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logs.CurrentName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
