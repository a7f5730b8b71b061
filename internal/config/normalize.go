package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize expands paths, applies env fallbacks and fills empty sections with
// defaults. Load calls it; tests building a Config by hand call it directly.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeCommerce()
	if err := c.normalizeSheets(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.normalizeAudition()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeCommerce() {
	c.Commerce.BaseURL = strings.TrimRight(strings.TrimSpace(c.Commerce.BaseURL), "/")
	if c.Commerce.BaseURL == "" {
		c.Commerce.BaseURL = defaultCommerceBaseURL
	}
	c.Commerce.APIKey = strings.TrimSpace(c.Commerce.APIKey)
	if c.Commerce.APIKey == "" {
		if value, ok := os.LookupEnv("COMMERCE_API_KEY"); ok {
			c.Commerce.APIKey = strings.TrimSpace(value)
		}
	}
	c.Commerce.UserAgent = strings.TrimSpace(c.Commerce.UserAgent)
	if c.Commerce.UserAgent == "" {
		c.Commerce.UserAgent = defaultCommerceUserAgent
	}
	if c.Commerce.TimeoutSeconds <= 0 {
		c.Commerce.TimeoutSeconds = defaultCommerceTimeoutSeconds
	}
	if c.Commerce.RequestsPerSecond <= 0 {
		c.Commerce.RequestsPerSecond = defaultCommerceRequestsPerSec
	}
}

func (c *Config) normalizeSheets() error {
	c.Sheets.CredentialsFile = strings.TrimSpace(c.Sheets.CredentialsFile)
	if c.Sheets.CredentialsFile == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			c.Sheets.CredentialsFile = strings.TrimSpace(value)
		}
	}
	if c.Sheets.CredentialsFile != "" {
		var err error
		if c.Sheets.CredentialsFile, err = expandPath(c.Sheets.CredentialsFile); err != nil {
			return fmt.Errorf("sheets.credentials_file: %w", err)
		}
	}
	if c.Sheets.TimeoutSeconds <= 0 {
		c.Sheets.TimeoutSeconds = defaultSheetsTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath == "" {
		return nil
	}
	var err error
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudition() {
	a := &c.Audition
	a.Organization = strings.TrimSpace(a.Organization)
	a.PacketProducts = trimList(a.PacketProducts)
	a.RegistrationProducts = trimList(a.RegistrationProducts)
	if len(a.PacketFields) == 0 {
		a.PacketFields = defaultPacketFields()
	}
	if len(a.RegistrationFields) == 0 {
		a.RegistrationFields = defaultRegistrationFields()
	}
	a.PacketFields = normalizeFieldMap(a.PacketFields)
	a.RegistrationFields = normalizeFieldMap(a.RegistrationFields)
	if a.PacketRequiredLabels == nil {
		a.PacketRequiredLabels = defaultRequiredLabels()
	}
	if a.RegistrationRequiredLabels == nil {
		a.RegistrationRequiredLabels = defaultRequiredLabels()
	}
	a.PacketRequiredLabels = trimList(a.PacketRequiredLabels)
	a.RegistrationRequiredLabels = trimList(a.RegistrationRequiredLabels)

	a.Report.SpreadsheetID = strings.TrimSpace(a.Report.SpreadsheetID)
	a.Report.PacketsTab = strings.TrimSpace(a.Report.PacketsTab)
	if a.Report.PacketsTab == "" {
		a.Report.PacketsTab = defaultPacketsTab
	}
	a.Report.RegistrationsTab = strings.TrimSpace(a.Report.RegistrationsTab)
	if a.Report.RegistrationsTab == "" {
		a.Report.RegistrationsTab = defaultRegistrationsTab
	}

	a.Recruitment.SpreadsheetID = strings.TrimSpace(a.Recruitment.SpreadsheetID)
	a.Recruitment.UnsortedTab = strings.TrimSpace(a.Recruitment.UnsortedTab)
	if a.Recruitment.UnsortedTab == "" {
		a.Recruitment.UnsortedTab = defaultUnsortedTab
	}
	a.Recruitment.VetMarker = strings.TrimSpace(a.Recruitment.VetMarker)
	if a.Recruitment.VetMarker == "" {
		a.Recruitment.VetMarker = defaultVetMarker
	}
	for i := range a.Recruitment.Tabs {
		tab := &a.Recruitment.Tabs[i]
		tab.Name = strings.TrimSpace(tab.Name)
		tab.Instruments = trimList(tab.Instruments)
	}
}

func normalizeFieldMap(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for label, attr := range fields {
		label = strings.TrimSpace(label)
		attr = strings.ToLower(strings.TrimSpace(attr))
		if label == "" || attr == "" {
			continue
		}
		out[label] = attr
	}
	return out
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
