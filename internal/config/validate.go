package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCommerce(); err != nil {
		return err
	}
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateRecruitment(); err != nil {
		return err
	}
	return nil
}

// ValidateForSync adds the checks that only matter when a sync run is about to
// talk to the commerce API and the reporting spreadsheet.
func (c *Config) ValidateForSync() error {
	if c.Commerce.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/auditionsync/config.toml"
		}
		return fmt.Errorf("commerce.api_key is required. Set COMMERCE_API_KEY env var or edit %s (create with 'auditionsync config init')", defaultPath)
	}
	if c.Audition.Report.SpreadsheetID == "" {
		return errors.New("audition.report.spreadsheet_id must be set")
	}
	if len(c.Audition.PacketProducts) == 0 && len(c.Audition.RegistrationProducts) == 0 {
		return errors.New("audition.packet_products or audition.registration_products must list at least one product")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func (c *Config) validateCommerce() error {
	if err := ensurePositiveMap(map[string]int{
		"commerce.timeout_seconds": c.Commerce.TimeoutSeconds,
		"sheets.timeout_seconds":   c.Sheets.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must be >= 0 (got %d)", c.Notifications.RequestTimeout)
	}
	if topic := c.Notifications.NtfyTopic; topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL (got %q)", topic)
	}
	if !strings.HasPrefix(c.Commerce.BaseURL, "http://") && !strings.HasPrefix(c.Commerce.BaseURL, "https://") {
		return fmt.Errorf("commerce.base_url must be an http(s) URL (got %q)", c.Commerce.BaseURL)
	}
	return nil
}

func (c *Config) validateFields() error {
	for label, attr := range c.Audition.PacketFields {
		if _, ok := knownAttributes[attr]; !ok {
			return fmt.Errorf("audition.packet_fields[%q]: unknown attribute %q", label, attr)
		}
	}
	for label, attr := range c.Audition.RegistrationFields {
		if _, ok := knownAttributes[attr]; !ok {
			return fmt.Errorf("audition.registration_fields[%q]: unknown attribute %q", label, attr)
		}
	}
	for _, product := range c.Audition.PacketProducts {
		for _, other := range c.Audition.RegistrationProducts {
			if strings.EqualFold(product, other) {
				return fmt.Errorf("product %q is listed as both a packet and a registration product", product)
			}
		}
	}
	return nil
}

func (c *Config) validateReport() error {
	r := c.Audition.Report
	if strings.EqualFold(r.PacketsTab, r.RegistrationsTab) {
		return errors.New("audition.report.packets_tab and audition.report.registrations_tab must differ")
	}
	return nil
}

func (c *Config) validateRecruitment() error {
	rec := c.Audition.Recruitment
	seen := make(map[string]struct{}, len(rec.Tabs))
	for i, tab := range rec.Tabs {
		if tab.Name == "" {
			return fmt.Errorf("audition.recruitment.tabs[%d].name must be set", i)
		}
		if len(tab.Instruments) == 0 {
			return fmt.Errorf("audition.recruitment.tabs[%d] (%s) must list at least one instrument", i, tab.Name)
		}
		key := strings.ToLower(tab.Name)
		if key == strings.ToLower(rec.UnsortedTab) {
			return fmt.Errorf("audition.recruitment.tabs[%d] reuses the unsorted tab name %q", i, tab.Name)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("audition.recruitment.tabs[%d]: duplicate tab name %q", i, tab.Name)
		}
		seen[key] = struct{}{}
	}
	if rec.SpreadsheetID != "" && len(rec.Tabs) == 0 {
		return errors.New("audition.recruitment.tabs must be set when audition.recruitment.spreadsheet_id is set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
