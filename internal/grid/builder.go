package grid

import (
	"slices"

	"auditionsync/internal/services/sheets"
)

// Kind classifies a row for formatting.
type Kind int

const (
	KindPlain Kind = iota
	KindBlank
	KindHeader
	KindSubheader
	KindInstrument
	KindData
	KindRegistered
)

// Builder appends rows and classifies them in one step. The zero value is
// ready to use.
type Builder struct {
	rows  [][]string
	kinds []Kind
}

// Add appends a row of the given kind and returns its 0-based index.
func (b *Builder) Add(kind Kind, cells ...string) int {
	b.rows = append(b.rows, slices.Clone(cells))
	b.kinds = append(b.kinds, kind)
	return len(b.rows) - 1
}

func (b *Builder) Header(text string) int        { return b.Add(KindHeader, text) }
func (b *Builder) Subheader(cells ...string) int { return b.Add(KindSubheader, cells...) }
func (b *Builder) Instrument(label string) int   { return b.Add(KindInstrument, label) }
func (b *Builder) Data(cells []string) int       { return b.Add(KindData, cells...) }
func (b *Builder) Registered(cells []string) int { return b.Add(KindRegistered, cells...) }
func (b *Builder) Plain(cells ...string) int     { return b.Add(KindPlain, cells...) }
func (b *Builder) Blank() int                    { return b.Add(KindBlank) }

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return len(b.rows) }

// Rows returns a copy of the rows.
func (b *Builder) Rows() [][]string {
	out := make([][]string, len(b.rows))
	for i, row := range b.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// Kind returns the class of row i.
func (b *Builder) Kind(i int) Kind {
	if i < 0 || i >= len(b.kinds) {
		return KindPlain
	}
	return b.kinds[i]
}

// Indices returns the row indices of one kind in ascending order.
func (b *Builder) Indices(kind Kind) []int {
	var out []int
	for i, k := range b.kinds {
		if k == kind {
			out = append(out, i)
		}
	}
	return out
}

// Format derives the sheet formatting request from the row classes.
func (b *Builder) Format() sheets.Format {
	return sheets.Format{
		HeaderRows:     b.Indices(KindHeader),
		SubheaderRows:  b.Indices(KindSubheader),
		InstrumentRows: b.Indices(KindInstrument),
		RegisteredRows: b.Indices(KindRegistered),
	}
}
