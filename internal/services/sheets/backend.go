package sheets

import (
	"context"
	"strings"
)

// Format lists 0-based row indices to style after a write.
type Format struct {
	HeaderRows     []int
	SubheaderRows  []int
	InstrumentRows []int
	RegisteredRows []int
}

// Empty reports whether no rows are listed.
func (f Format) Empty() bool {
	return len(f.HeaderRows) == 0 && len(f.SubheaderRows) == 0 &&
		len(f.InstrumentRows) == 0 && len(f.RegisteredRows) == 0
}

// Backend is the spreadsheet surface the pipeline writes through.
type Backend interface {
	Read(ctx context.Context, spreadsheetID, tab string) ([][]string, error)
	// Write overwrites cells from A1. With formulae set, values are parsed as
	// if typed by a user so formulas stay live.
	Write(ctx context.Context, spreadsheetID, tab string, rows [][]string, formulae bool) error
	Clear(ctx context.Context, spreadsheetID, tab string) error
	Format(ctx context.Context, spreadsheetID, tab string, format Format) error
}

// QuoteTab renders a tab name for A1 notation.
func QuoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// TabRange returns the A1 range starting at the top-left cell of tab.
func TabRange(tab string) string {
	return QuoteTab(tab) + "!A1"
}
