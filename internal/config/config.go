package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Commerce contains configuration for the commerce orders API.
type Commerce struct {
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	UserAgent         string  `toml:"user_agent"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Sheets contains configuration for the spreadsheet backend.
type Sheets struct {
	CredentialsFile string `toml:"credentials_file"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Metrics contains configuration for the run metrics export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Notifications configures ntfy run notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NotifySuccess  bool   `toml:"notify_success"`
}

// Report identifies the reporting spreadsheet rebuilt on every run.
type Report struct {
	SpreadsheetID    string `toml:"spreadsheet_id"`
	PacketsTab       string `toml:"packets_tab"`
	RegistrationsTab string `toml:"registrations_tab"`
}

// RecruitmentTab maps one recruiter-maintained tab to the instruments it tracks.
type RecruitmentTab struct {
	Name        string   `toml:"name"`
	Instruments []string `toml:"instruments"`
}

// Recruitment identifies the human-edited recruitment spreadsheet.
type Recruitment struct {
	SpreadsheetID string           `toml:"spreadsheet_id"`
	UnsortedTab   string           `toml:"unsorted_tab"`
	VetMarker     string           `toml:"vet_marker"`
	Tabs          []RecruitmentTab `toml:"tabs"`
}

// Audition holds the year-scoped product and field rules.
type Audition struct {
	Year                       int               `toml:"year"`
	Organization               string            `toml:"organization"`
	PacketProducts             []string          `toml:"packet_products"`
	RegistrationProducts       []string          `toml:"registration_products"`
	RegistrationDisplayNames   map[string]string `toml:"registration_display_names"`
	PacketFields               map[string]string `toml:"packet_fields"`
	RegistrationFields         map[string]string `toml:"registration_fields"`
	PacketRequiredLabels       []string          `toml:"packet_required_labels"`
	RegistrationRequiredLabels []string          `toml:"registration_required_labels"`
	Report                     Report            `toml:"report"`
	Recruitment                Recruitment       `toml:"recruitment"`
}

// Config encapsulates all configuration values for auditionsync.
//
// Configuration sections by subsystem:
//   - Paths: state (run ledger, lock) and log directories
//   - Logging: log format, level, and retention
//   - Commerce: orders API endpoint, credentials, and pacing
//   - Sheets: spreadsheet API credentials
//   - Metrics: Prometheus textfile export
//   - Notifications: ntfy alerts for finished runs
//   - Audition: year-scoped product rules and target spreadsheets
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Commerce      Commerce      `toml:"commerce"`
	Sheets        Sheets        `toml:"sheets"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
	Audition      Audition      `toml:"audition"`
}

// DefaultConfigPath returns ~/.config/auditionsync/config.toml, expanded.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/auditionsync/config.toml")
}

// Load reads the configuration, applies defaults and normalization, and
// validates the result. It also returns the path it resolved and whether a
// file existed there; a missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config %s: %w", resolved, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			var decodeErr *toml.DecodeError
			if errors.As(err, &decodeErr) {
				row, col := decodeErr.Position()
				return nil, "", false, fmt.Errorf("parse config %s:%d:%d: %w", resolved, row, col, err)
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// locate resolves an explicit path as given. Without one it tries the user
// config file and then ./auditionsync.toml, falling back to the user path.
func locate(explicit string) (string, bool, error) {
	if explicit != "" {
		path, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(path); {
		case err == nil:
			return path, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return path, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs("auditionsync.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, localPath} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunLedgerPath returns the SQLite run history location.
func (c *Config) RunLedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LockPath returns the file used to serialize sync runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "sync.lock")
}

// RecruitmentEnabled reports whether a recruitment spreadsheet is configured.
func (c *Config) RecruitmentEnabled() bool {
	return strings.TrimSpace(c.Audition.Recruitment.SpreadsheetID) != ""
}

// expandPath resolves a leading "~" or "~/" against the home directory and
// returns an absolute, cleaned path. Empty stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" and absolute path rules as config fields.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
