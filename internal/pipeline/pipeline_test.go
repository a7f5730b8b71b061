package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"auditionsync/internal/logging"
	"auditionsync/internal/orders"
	"auditionsync/internal/pipeline"
	"auditionsync/internal/profiles"
	"auditionsync/internal/recruitment"
	"auditionsync/internal/report"
	"auditionsync/internal/result"
	"auditionsync/internal/testsupport"
)

type stubLister struct{ list []orders.Order }

func (s stubLister) ListOrders(context.Context) ([]orders.Order, error) { return s.list, nil }

type fakeFetcher struct{ res result.Result[[]orders.Order] }

func (f fakeFetcher) Fetch(context.Context) result.Result[[]orders.Order] { return f.res }

type fakeBuilder struct {
	calls int
	res   result.Result[profiles.Build]
}

func (f *fakeBuilder) Build(context.Context, []orders.Order) result.Result[profiles.Build] {
	f.calls++
	return f.res
}

type fakeReport struct {
	calls int
	res   result.Result[report.Counts]
}

func (f *fakeReport) Write(context.Context, []profiles.Profile) result.Result[report.Counts] {
	f.calls++
	return f.res
}

type fakeRecruitment struct {
	calls int
	res   result.Result[recruitment.Summary]
}

func (f *fakeRecruitment) Update(context.Context, []profiles.Profile) result.Result[recruitment.Summary] {
	f.calls++
	return f.res
}

func TestRunShortCircuitsOnFirstFailure(t *testing.T) {
	builder := &fakeBuilder{res: result.Success(profiles.Build{})}
	writer := &fakeReport{res: result.Success(report.Counts{})}
	rec := &fakeRecruitment{res: result.Success(recruitment.Summary{})}
	stages := pipeline.StageSet{
		Fetcher:     fakeFetcher{res: result.Failure[[]orders.Order]("Commerce API request timed out")},
		Builder:     builder,
		Report:      writer,
		Recruitment: rec,
	}

	res := pipeline.New(stages, logging.NewNop()).Run(context.Background())
	if diff := cmp.Diff([]string{"Commerce API request timed out"}, res.Errors()); diff != "" {
		t.Fatalf("errors must pass through unchanged (-want +got):\n%s", diff)
	}
	if builder.calls+writer.calls+rec.calls != 0 {
		t.Fatal("no stage may run after a failure")
	}
}

func TestRunStopsBeforeRecruitmentWhenReportFails(t *testing.T) {
	writer := &fakeReport{res: result.Failure[report.Counts]("Failed to update Packets tab: boom")}
	rec := &fakeRecruitment{}
	stages := pipeline.StageSet{
		Fetcher:     fakeFetcher{res: result.Success([]orders.Order{})},
		Builder:     &fakeBuilder{res: result.Success(profiles.Build{})},
		Report:      writer,
		Recruitment: rec,
	}
	res := pipeline.New(stages, nil).Run(context.Background())
	if res.Error() != "Failed to update Packets tab: boom" {
		t.Fatalf("unexpected errors %v", res.Errors())
	}
	if rec.calls != 0 {
		t.Fatal("recruitment must not run after a report failure")
	}
}

func TestRunSkipsRecruitmentWhenNotConfigured(t *testing.T) {
	stages := pipeline.StageSet{
		Fetcher: fakeFetcher{res: result.Success([]orders.Order{})},
		Builder: &fakeBuilder{res: result.Success(profiles.Build{OrdersProcessed: 3})},
		Report:  &fakeReport{res: result.Success(report.Counts{})},
	}
	res := pipeline.New(stages, nil).Run(context.Background())
	if res.Failed() {
		t.Fatalf("unexpected failure %v", res.Errors())
	}
	got := res.Data()
	if !got.ReportUpdated || got.RecruitmentUpdated || got.OrdersProcessed != 3 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestRunScenarioSinglePacket(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	backend := testsupport.NewMemorySheets()
	list := []orders.Order{
		testsupport.Order("jane@x.com", "2026-01-10T14:00:00Z",
			testsupport.PacketItem(testsupport.SnarePacket, "Jane Doe", "Columbus", "Ohio", "Snare")),
		testsupport.Order("other@x.com", "2026-01-11T14:00:00Z",
			testsupport.Item("Cadets Hoodie")),
	}

	stages := pipeline.NewStageSet(cfg.Rules(), stubLister{list: list}, backend, logging.NewNop())
	if stages.Recruitment != nil {
		t.Fatal("recruitment stage must be nil without a recruitment spreadsheet")
	}
	res := pipeline.New(stages, logging.NewNop()).Run(context.Background())
	if res.Failed() {
		t.Fatalf("run failed: %v", res.Errors())
	}
	want := pipeline.Summary{OrdersProcessed: 2, ProfilesCreated: 1, Packets: 1, ReportUpdated: true}
	if diff := cmp.Diff(want, res.Data()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	rows := backend.Rows(testsupport.ReportSpreadsheet, "Packets")
	if len(rows) != 4 {
		t.Fatalf("expected header, column header, instrument and data rows, got %q", rows)
	}
	if rows[0][0] != "Snare Audition Packet (1 downloads)" || rows[2][0] != "Snare" {
		t.Fatalf("unexpected layout %q", rows)
	}
	if rows[3][2] != "jane@x.com" || rows[3][4] != "OH" {
		t.Fatalf("unexpected data row %q", rows[3])
	}
}

func TestRunSkipsOrderWithUnparseableDate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	backend := testsupport.NewMemorySheets()
	list := []orders.Order{
		testsupport.Order("jane@x.com", "2026-01-10T14:00:00Z",
			testsupport.PacketItem(testsupport.SnarePacket, "Jane Doe", "Columbus", "OH", "Snare")),
		testsupport.Order("sam@x.com", "not a date",
			testsupport.RegistrationItem("Sam Roe", "Dayton", "OH", "Tenors")),
	}

	res := pipeline.New(pipeline.NewStageSet(cfg.Rules(), stubLister{list: list}, backend, nil), nil).Run(context.Background())
	if res.Failed() {
		t.Fatalf("an undated order must not fail the run: %v", res.Errors())
	}
	got := res.Data()
	if got.Packets != 1 || got.Registrations != 0 || got.ProfilesCreated != 1 {
		t.Fatalf("undated order must contribute no records, got %+v", got)
	}
	if len(got.Issues) != 1 || !strings.Contains(got.Issues[0], "Order #2") {
		t.Fatalf("expected one issue for Order #2, got %q", got.Issues)
	}
	if rows := backend.Rows(testsupport.ReportSpreadsheet, "Registrations"); len(rows) != 0 {
		t.Fatalf("registrations tab should stay empty, got %q", rows)
	}
}

func TestRunWithRecruitment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecruitment())
	backend := testsupport.NewMemorySheets()
	backend.Seed(testsupport.RecruitmentSheet, "Snare", [][]string{{"", "JANE", "doe"}})
	backend.Seed(testsupport.RecruitmentSheet, "Front Ensemble", [][]string{})
	list := []orders.Order{
		testsupport.Order("jane@x.com", "2026-01-10T14:00:00Z",
			testsupport.PacketItem(testsupport.SnarePacket, "Jane Doe", "Columbus", "OH", "Snare")),
	}

	res := pipeline.New(pipeline.NewStageSet(cfg.Rules(), stubLister{list: list}, backend, nil), nil).Run(context.Background())
	if res.Failed() {
		t.Fatalf("run failed: %v", res.Errors())
	}
	if got := res.Data(); !got.RecruitmentUpdated || got.RecruitmentTabs != 2 || got.Unsorted != 0 {
		t.Fatalf("unexpected summary %+v", got)
	}
	row := backend.Rows(testsupport.RecruitmentSheet, "Snare")[0]
	if row[recruitment.ColPacket] != "Y" {
		t.Fatalf("expected packet flag on matched row, got %q", row)
	}
}
