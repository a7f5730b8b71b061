package report

import (
	"context"
	"fmt"
	"log/slog"

	"auditionsync/internal/config"
	"auditionsync/internal/grid"
	"auditionsync/internal/logging"
	"auditionsync/internal/profiles"
	"auditionsync/internal/records"
	"auditionsync/internal/result"
	"auditionsync/internal/services/sheets"
)

// Counts reports how many records were written to each tab.
type Counts struct {
	Packets       int
	Registrations int
}

// Writer rebuilds the reporting spreadsheet.
type Writer struct {
	backend sheets.Backend
	report  config.Report
	logger  *slog.Logger
}

// NewWriter binds a writer to a backend and the report settings in rules.
func NewWriter(backend sheets.Backend, rules *config.Rules, logger *slog.Logger) *Writer {
	return &Writer{
		backend: backend,
		report:  rules.Report(),
		logger:  logging.NewComponentLogger(logger, "report"),
	}
}

// Write extracts packets and registrations from the profiles and rewrites
// both report tabs. A failure on either tab stops the write; nothing is
// retried.
func (w *Writer) Write(ctx context.Context, list []profiles.Profile) result.Result[Counts] {
	logger := logging.WithContext(ctx, w.logger)
	if w.report.SpreadsheetID == "" {
		return result.Failure[Counts]("Report spreadsheet is not configured")
	}

	var packets []records.Packet
	var registrations []records.Registration
	for _, p := range list {
		if pk, ok := p.Packet(); ok {
			packets = append(packets, pk)
		}
		if reg, ok := p.Registration(); ok {
			registrations = append(registrations, reg)
		}
	}

	if err := w.replaceTab(ctx, logger, w.report.PacketsTab, PacketGrid(packets)); err != nil {
		return result.Failuref[Counts]("Failed to update %s tab: %v", w.report.PacketsTab, err)
	}
	if err := w.replaceTab(ctx, logger, w.report.RegistrationsTab, RegistrationGrid(registrations)); err != nil {
		return result.Failuref[Counts]("Failed to update %s tab: %v", w.report.RegistrationsTab, err)
	}
	return result.Success(Counts{Packets: len(packets), Registrations: len(registrations)})
}

func (w *Writer) replaceTab(ctx context.Context, logger *slog.Logger, tab string, g *grid.Builder) error {
	id := w.report.SpreadsheetID
	if err := w.backend.Clear(ctx, id, tab); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if g.Len() > 0 {
		if err := w.backend.Write(ctx, id, tab, g.Rows(), false); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		if err := w.backend.Format(ctx, id, tab, g.Format()); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	logger.Info("report tab rewritten",
		logging.String(logging.FieldSpreadsheet, id),
		logging.String(logging.FieldTab, tab),
		logging.Int("rows", g.Len()),
	)
	return nil
}
