package report_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"auditionsync/internal/grid"
	"auditionsync/internal/profiles"
	"auditionsync/internal/records"
	"auditionsync/internal/report"
	"auditionsync/internal/testsupport"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func packet(typ, first, instrument string, offset time.Duration) records.Packet {
	return records.Packet{
		Type:         typ,
		FirstName:    first,
		LastName:     "Doe",
		Email:        strings.ToLower(first) + "@x.com",
		City:         "Columbus",
		State:        "OH",
		Instrument:   instrument,
		DownloadedAt: base.Add(offset),
	}
}

func TestPacketGridSingleRecord(t *testing.T) {
	g := report.PacketGrid([]records.Packet{packet("Snare Audition Packet", "Jane", "Snare", 0)})
	want := [][]string{
		{"Snare Audition Packet (1 downloads)"},
		records.PacketHeaders,
		{"Snare"},
		{"Jane", "Doe", "jane@x.com", "Columbus", "OH", "Snare", "3/1 12:00 pm"},
	}
	if diff := cmp.Diff(want, g.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	f := g.Format()
	if diff := cmp.Diff([]int{0}, f.HeaderRows); diff != "" {
		t.Fatalf("header rows: %s", diff)
	}
	if diff := cmp.Diff([]int{2}, f.InstrumentRows); diff != "" {
		t.Fatalf("instrument rows: %s", diff)
	}
}

func TestPacketGridGroupsAndSorts(t *testing.T) {
	g := report.PacketGrid([]records.Packet{
		packet("Snare Packet", "Late", "Snare", 2*time.Hour),
		packet("Brass Packet", "Bo", "Trumpet", 0),
		packet("Snare Packet", "Early", "Snare", time.Hour),
		packet("Snare Packet", "Nobody", "", 0),
	})
	rows := g.Rows()
	var firstCells []string
	for _, row := range rows {
		if len(row) == 0 {
			firstCells = append(firstCells, "")
			continue
		}
		firstCells = append(firstCells, row[0])
	}
	want := []string{
		"Brass Packet (1 downloads)", "First Name", "Trumpet", "Bo",
		"",
		"Snare Packet (3 downloads)", "First Name", "Snare", "Early", "Late",
		"",
		report.UnspecifiedInstrument, "Nobody",
	}
	if diff := cmp.Diff(want, firstCells); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if got := rows[len(rows)-1]; len(got) == 0 {
		t.Fatal("grid must not end with a blank row")
	}
}

func TestRegistrationGridUsesRegistrationHeaders(t *testing.T) {
	g := report.RegistrationGrid([]records.Registration{{Type: "Percussion Audition", FirstName: "Pat", Instrument: "Marimba", RegisteredAt: base}})
	rows := g.Rows()
	if rows[0][0] != "Percussion Audition (1 registrations)" {
		t.Fatalf("unexpected header %q", rows[0][0])
	}
	if diff := cmp.Diff(records.RegistrationHeaders, rows[1]); diff != "" {
		t.Fatalf("subheader mismatch: %s", diff)
	}
}

func TestGridIndicesStayInSync(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	types := []string{"Snare Packet", "Brass Packet", "Bass Packet"}
	instruments := []string{"Snare", "Tenors", "", "Trumpet"}

	properties.Property("one header per type and instrument rows hold their label", prop.ForAll(
		func(picks []int) bool {
			list := make([]records.Packet, 0, len(picks))
			distinct := map[string]struct{}{}
			for i, n := range picks {
				typ := types[n%len(types)]
				distinct[typ] = struct{}{}
				list = append(list, packet(typ, fmt.Sprintf("P%d", i), instruments[(n/3)%len(instruments)], time.Duration(n)*time.Minute))
			}
			g := report.PacketGrid(list)
			f := g.Format()
			if len(f.HeaderRows) != len(distinct) || len(f.SubheaderRows) != len(distinct) {
				return false
			}
			rows := g.Rows()
			for _, idx := range f.InstrumentRows {
				if len(rows[idx]) != 1 || g.Kind(idx) != grid.KindInstrument {
					return false
				}
				label := rows[idx][0]
				if label != report.UnspecifiedInstrument && !contains(instruments, label) {
					return false
				}
			}
			return len(g.Indices(grid.KindData)) == len(list)
		},
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func sampleProfiles() []profiles.Profile {
	pk := packet("Snare Audition Packet", "Jane", "Snare", 0)
	reg := records.Registration{Type: "Percussion Audition", FirstName: "Pat", LastName: "Lee", Email: "pat@x.com", Instrument: "Marimba", RegisteredAt: base}
	return []profiles.Profile{
		profiles.New("Jane", "Doe", "jane@x.com", "Columbus", "OH", "Snare", &pk, nil),
		profiles.New("Pat", "Lee", "pat@x.com", "", "", "Marimba", nil, &reg),
	}
}

func TestWriterClearsThenWritesBothTabs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	backend := testsupport.NewMemorySheets()
	backend.Seed(testsupport.ReportSpreadsheet, "Packets", [][]string{{"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}})

	res := report.NewWriter(backend, cfg.Rules(), nil).Write(context.Background(), sampleProfiles())
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Errors())
	}
	if diff := cmp.Diff(report.Counts{Packets: 1, Registrations: 1}, res.Data()); diff != "" {
		t.Fatalf("counts mismatch: %s", diff)
	}
	rows := backend.Rows(testsupport.ReportSpreadsheet, "Packets")
	if len(rows) != 4 {
		t.Fatalf("expected stale rows cleared, got %q", rows)
	}
	var ops []string
	for _, call := range backend.Calls() {
		ops = append(ops, call.Op+" "+call.Tab)
		if call.Op == "write" && call.Formulae {
			t.Fatal("report writes must be raw")
		}
	}
	want := []string{"clear Packets", "write Packets", "format Packets", "clear Registrations", "write Registrations", "format Registrations"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("call order mismatch: %s", diff)
	}
	if f, ok := backend.FormatOf(testsupport.ReportSpreadsheet, "Registrations"); !ok || len(f.HeaderRows) != 1 {
		t.Fatalf("expected registrations formatted, got %+v", f)
	}
}

func TestWriterFailureNamesTab(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	backend := testsupport.NewMemorySheets()
	backend.FailOn("write", "Registrations", errors.New("quota exceeded"))

	res := report.NewWriter(backend, cfg.Rules(), nil).Write(context.Background(), sampleProfiles())
	if res.OK() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error(), "Registrations") || !strings.Contains(res.Error(), "quota exceeded") {
		t.Fatalf("unexpected error %q", res.Error())
	}
	if len(backend.Rows(testsupport.ReportSpreadsheet, "Packets")) == 0 {
		t.Fatal("packets tab written before the failure stays written")
	}
}

func TestWriterEmptyProfilesClearsTabs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	backend := testsupport.NewMemorySheets()
	backend.Seed(testsupport.ReportSpreadsheet, "Packets", [][]string{{"stale"}})

	res := report.NewWriter(backend, cfg.Rules(), nil).Write(context.Background(), nil)
	if !res.OK() || res.Data() != (report.Counts{}) {
		t.Fatalf("unexpected result %+v %v", res.Data(), res.Errors())
	}
	if rows := backend.Rows(testsupport.ReportSpreadsheet, "Packets"); len(rows) != 0 {
		t.Fatalf("expected cleared tab, got %q", rows)
	}
}
