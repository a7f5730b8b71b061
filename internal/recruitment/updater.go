package recruitment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"auditionsync/internal/config"
	"auditionsync/internal/grid"
	"auditionsync/internal/logging"
	"auditionsync/internal/profiles"
	"auditionsync/internal/result"
	"auditionsync/internal/services/sheets"
	"auditionsync/internal/textutil"
)

var unsortedInstructions = []string{
	"Candidates below downloaded a packet or registered but are not listed on their instrument tab yet.",
	"This tab is rebuilt on every sync. Copy a row onto its instrument tab to keep any edits.",
}

// Summary describes one recruitment update.
type Summary struct {
	TabsUpdated       int
	ProfilesProcessed int
	Unsorted          int
}

// Updater applies profiles to the recruitment spreadsheet.
type Updater struct {
	backend sheets.Backend
	layout  config.Recruitment
	rows    RowBuilder
	logger  *slog.Logger
}

// NewUpdater binds an updater to a backend and the recruitment layout in rules.
func NewUpdater(backend sheets.Backend, rules *config.Rules, logger *slog.Logger) *Updater {
	layout := rules.Recruitment()
	return &Updater{
		backend: backend,
		layout:  layout,
		rows:    RowBuilder{VetMarker: layout.VetMarker},
		logger:  logging.NewComponentLogger(logger, "recruitment"),
	}
}

type pending struct {
	tab  config.RecruitmentTab
	list []profiles.Profile
}

// Update marks matched rows on every instrument tab, then rebuilds UNSORTED
// with the candidates no tab lists. The first failing tab stops the update.
func (u *Updater) Update(ctx context.Context, list []profiles.Profile) result.Result[Summary] {
	logger := logging.WithContext(ctx, u.logger)
	id := u.layout.SpreadsheetID
	if id == "" {
		return result.Failure[Summary]("Recruitment spreadsheet is not configured")
	}

	byName := make(map[string]profiles.Profile, len(list))
	for _, p := range list {
		key := textutil.NameKey(p.FirstName(), p.LastName())
		if _, dup := byName[key]; !dup {
			byName[key] = p
		}
	}

	summary := Summary{ProfilesProcessed: len(list)}
	var unsorted []pending
	for _, tab := range u.layout.Tabs {
		listed, err := u.updateTab(ctx, logger, tab, byName)
		if err != nil {
			return result.Failuref[Summary]("Failed to update recruitment tab %s: %v", tab.Name, err)
		}
		summary.TabsUpdated++
		if missing := newForTab(tab, list, listed); len(missing) > 0 {
			unsorted = append(unsorted, pending{tab: tab, list: missing})
			summary.Unsorted += len(missing)
		}
	}

	if err := u.rebuildUnsorted(ctx, unsorted); err != nil {
		return result.Failuref[Summary]("Failed to update recruitment tab %s: %v", u.layout.UnsortedTab, err)
	}
	logger.Info("recruitment sheet updated",
		logging.String(logging.FieldSpreadsheet, id),
		logging.Int("tabs_updated", summary.TabsUpdated),
		logging.Int("unsorted", summary.Unsorted),
	)
	return result.Success(summary)
}

// updateTab rewrites matched person rows in place and returns the name keys
// of every person row on the tab.
func (u *Updater) updateTab(ctx context.Context, logger *slog.Logger, tab config.RecruitmentTab, byName map[string]profiles.Profile) (map[string]struct{}, error) {
	id := u.layout.SpreadsheetID
	rows, err := u.backend.Read(ctx, id, tab.Name)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	multi := len(tab.Instruments) > 1
	listed := make(map[string]struct{})
	matched := 0
	for i, row := range rows {
		if !u.rows.IsPersonRow(row) {
			continue
		}
		key := textutil.NameKey(cell(row, ColFirstName), cell(row, ColLastName))
		listed[key] = struct{}{}
		p, ok := byName[key]
		if !ok {
			continue
		}
		rows[i] = u.rows.Apply(row, p, multi)
		matched++
	}

	if err := u.backend.Write(ctx, id, tab.Name, rows, true); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	logger.Debug("recruitment tab updated",
		logging.String(logging.FieldTab, tab.Name),
		logging.Int("rows", len(rows)),
		logging.Int("matched", matched),
	)
	return listed, nil
}

// newForTab returns profiles whose packet instrument belongs to the tab and
// whose name is not listed there.
func newForTab(tab config.RecruitmentTab, list []profiles.Profile, listed map[string]struct{}) []profiles.Profile {
	var out []profiles.Profile
	for _, p := range list {
		pk, ok := p.Packet()
		if !ok || !hasInstrument(tab, pk.Instrument) {
			continue
		}
		if _, found := listed[textutil.NameKey(p.FirstName(), p.LastName())]; found {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasInstrument(tab config.RecruitmentTab, instrument string) bool {
	instrument = strings.ToLower(textutil.CollapseSpace(instrument))
	if instrument == "" {
		return false
	}
	return slices.ContainsFunc(tab.Instruments, func(candidate string) bool {
		return strings.ToLower(textutil.CollapseSpace(candidate)) == instrument
	})
}

func (u *Updater) rebuildUnsorted(ctx context.Context, sections []pending) error {
	id, tab := u.layout.SpreadsheetID, u.layout.UnsortedTab
	if err := u.backend.Clear(ctx, id, tab); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	g := unsortedGrid(u.rows, sections)
	if err := u.backend.Write(ctx, id, tab, g.Rows(), false); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := u.backend.Format(ctx, id, tab, g.Format()); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// unsortedGrid lays out the UNSORTED tab: instructions, the column header, a
// blank row, then one titled section per tab with candidates.
func unsortedGrid(rb RowBuilder, sections []pending) *grid.Builder {
	g := &grid.Builder{}
	for _, line := range unsortedInstructions {
		g.Plain(line)
	}
	g.Subheader(Headers...)
	g.Blank()
	for _, section := range sections {
		g.Header(section.tab.Name)
		multi := len(section.tab.Instruments) > 1
		for _, p := range section.list {
			row := rb.NewRow(p, multi)
			kind := grid.KindData
			if p.HasRegistration() {
				kind = grid.KindRegistered
			}
			g.Add(kind, row...)
		}
		g.Blank()
	}
	return g
}
