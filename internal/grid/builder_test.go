package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"auditionsync/internal/services/sheets"
)

func TestBuilderTracksRowClasses(t *testing.T) {
	var b Builder
	b.Header("Snare Packet (2 downloads)")
	b.Subheader("First Name", "Last Name")
	b.Instrument("Snare")
	b.Data([]string{"Jane", "Doe"})
	b.Registered([]string{"Pat", "Lee"})
	b.Blank()
	b.Plain("note")

	want := sheets.Format{
		HeaderRows:     []int{0},
		SubheaderRows:  []int{1},
		InstrumentRows: []int{2},
		RegisteredRows: []int{4},
	}
	if diff := cmp.Diff(want, b.Format()); diff != "" {
		t.Fatalf("format mismatch (-want +got):\n%s", diff)
	}
	if b.Len() != 7 || b.Kind(5) != KindBlank || b.Kind(99) != KindPlain {
		t.Fatalf("unexpected builder state: len=%d", b.Len())
	}
	if rows := b.Rows(); len(rows[5]) != 0 || rows[2][0] != "Snare" {
		t.Fatalf("unexpected rows %q", rows)
	}
}

func TestBuilderCopiesCells(t *testing.T) {
	var b Builder
	cells := []string{"a"}
	b.Data(cells)
	cells[0] = "changed"
	rows := b.Rows()
	rows[0][0] = "mutated"
	if b.Rows()[0][0] != "a" {
		t.Fatal("builder must own its rows")
	}
}

func TestEmptyBuilderFormatIsEmpty(t *testing.T) {
	var b Builder
	if !b.Format().Empty() {
		t.Fatal("expected empty format")
	}
}
