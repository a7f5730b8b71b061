package testsupport

import (
	"path/filepath"
	"testing"

	"auditionsync/internal/config"
)

// Product names configured by NewConfig.
const (
	SnarePacket            = "2026 Cadets Snare Audition Packet"
	BrassPacket            = "2026 Cadets Brass Audition Packet"
	FrontEnsemblePacket    = "2026 Cadets Front Ensemble Audition Packet"
	PercussionRegistration = "2026 Cadets Percussion Registration"
	RegistrationDisplay    = "Percussion Audition"
	ReportSpreadsheet      = "report-sheet"
	RecruitmentSheet       = "recruitment-sheet"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config seeded with unique temp directories
// per test. Recruitment is disabled unless WithRecruitment is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Commerce.APIKey = "test"
	cfgVal.Commerce.BaseURL = "http://127.0.0.1:0"
	cfgVal.Audition.Year = 2026
	cfgVal.Audition.Organization = "Cadets"
	cfgVal.Audition.PacketProducts = []string{SnarePacket, BrassPacket, FrontEnsemblePacket}
	cfgVal.Audition.RegistrationProducts = []string{PercussionRegistration}
	cfgVal.Audition.RegistrationDisplayNames = map[string]string{PercussionRegistration: RegistrationDisplay}
	cfgVal.Audition.Report.SpreadsheetID = ReportSpreadsheet

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return builder.cfg
}

// WithRecruitment enables the recruitment spreadsheet with a single-instrument
// Snare tab and a multi-instrument Front Ensemble tab.
func WithRecruitment() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audition.Recruitment.SpreadsheetID = RecruitmentSheet
		b.cfg.Audition.Recruitment.Tabs = []config.RecruitmentTab{
			{Name: "Snare", Instruments: []string{"Snare"}},
			{Name: "Front Ensemble", Instruments: []string{"Marimba", "Vibraphone", "Synth"}},
		}
	}
}

// WithRecruitmentTabs replaces the recruitment tabs.
func WithRecruitmentTabs(tabs ...config.RecruitmentTab) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audition.Recruitment.SpreadsheetID = RecruitmentSheet
		b.cfg.Audition.Recruitment.Tabs = tabs
	}
}

// WithCommerceURL points the commerce client at a test server.
func WithCommerceURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Commerce.BaseURL = url
	}
}

// WithMetricsTextfile enables the Prometheus textfile export under the base dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", "auditionsync.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
