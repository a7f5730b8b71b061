package testsupport

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"auditionsync/internal/services/sheets"
)

// SheetCall records one backend operation.
type SheetCall struct {
	Op            string
	SpreadsheetID string
	Tab           string
	Formulae      bool
}

// MemorySheets is an in-memory sheets.Backend. Write and Clear create tabs on
// demand; Read of an unknown tab fails like the real API does.
type MemorySheets struct {
	mu       sync.Mutex
	tabs     map[string]map[string][][]string
	formats  map[string]map[string]sheets.Format
	failures map[string]error
	calls    []SheetCall
}

var _ sheets.Backend = (*MemorySheets)(nil)

// NewMemorySheets returns an empty backend.
func NewMemorySheets() *MemorySheets {
	return &MemorySheets{
		tabs:     make(map[string]map[string][][]string),
		formats:  make(map[string]map[string]sheets.Format),
		failures: make(map[string]error),
	}
}

// Seed replaces the contents of a tab.
func (m *MemorySheets) Seed(spreadsheetID, tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabLocked(spreadsheetID)[tab] = cloneRows(rows)
}

// Rows returns a copy of a tab's contents.
func (m *MemorySheets) Rows(spreadsheetID, tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRows(m.tabs[spreadsheetID][tab])
}

// FormatOf returns the last format applied to a tab.
func (m *MemorySheets) FormatOf(spreadsheetID, tab string) (sheets.Format, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.formats[spreadsheetID][tab]
	return f, ok
}

// FailOn makes every later op ("read", "write", "clear", "format") on tab
// return err.
func (m *MemorySheets) FailOn(op, tab string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+"|"+tab] = err
}

// Calls returns the operations performed so far.
func (m *MemorySheets) Calls() []SheetCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Tabs lists a spreadsheet's tabs in name order. Unknown spreadsheets fail.
func (m *MemorySheets) Tabs(_ context.Context, spreadsheetID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tabs, ok := m.tabs[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %q not found", spreadsheetID)
	}
	names := make([]string, 0, len(tabs))
	for name := range tabs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *MemorySheets) Read(_ context.Context, spreadsheetID, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SheetCall{Op: "read", SpreadsheetID: spreadsheetID, Tab: tab})
	if err := m.failures["read|"+tab]; err != nil {
		return nil, err
	}
	rows, ok := m.tabs[spreadsheetID][tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", sheets.QuoteTab(tab))
	}
	return cloneRows(rows), nil
}

func (m *MemorySheets) Write(_ context.Context, spreadsheetID, tab string, rows [][]string, formulae bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SheetCall{Op: "write", SpreadsheetID: spreadsheetID, Tab: tab, Formulae: formulae})
	if err := m.failures["write|"+tab]; err != nil {
		return err
	}
	existing := m.tabLocked(spreadsheetID)[tab]
	merged := cloneRows(existing)
	for i, row := range rows {
		if i < len(merged) {
			// Values.Update overwrites only the cells it covers.
			target := merged[i]
			for len(target) < len(row) {
				target = append(target, "")
			}
			copy(target, row)
			merged[i] = target
			continue
		}
		merged = append(merged, slices.Clone(row))
	}
	m.tabLocked(spreadsheetID)[tab] = merged
	return nil
}

func (m *MemorySheets) Clear(_ context.Context, spreadsheetID, tab string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SheetCall{Op: "clear", SpreadsheetID: spreadsheetID, Tab: tab})
	if err := m.failures["clear|"+tab]; err != nil {
		return err
	}
	m.tabLocked(spreadsheetID)[tab] = [][]string{}
	return nil
}

func (m *MemorySheets) Format(_ context.Context, spreadsheetID, tab string, format sheets.Format) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SheetCall{Op: "format", SpreadsheetID: spreadsheetID, Tab: tab})
	if err := m.failures["format|"+tab]; err != nil {
		return err
	}
	if m.formats[spreadsheetID] == nil {
		m.formats[spreadsheetID] = make(map[string]sheets.Format)
	}
	m.formats[spreadsheetID][tab] = format
	return nil
}

func (m *MemorySheets) tabLocked(spreadsheetID string) map[string][][]string {
	tabs, ok := m.tabs[spreadsheetID]
	if !ok {
		tabs = make(map[string][][]string)
		m.tabs[spreadsheetID] = tabs
	}
	return tabs
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
