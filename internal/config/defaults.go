package config

const (
	defaultStateDir               = "~/.local/share/auditionsync"
	defaultLogDir                 = "~/.local/share/auditionsync/logs"
	defaultLogRetentionDays       = 30
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultCommerceBaseURL        = "https://api.squarespace.com/1.0/commerce"
	defaultCommerceUserAgent      = "auditionsync/dev"
	defaultCommerceTimeoutSeconds = 30
	defaultCommerceRequestsPerSec = 2
	defaultSheetsTimeoutSeconds   = 30
	defaultPacketsTab             = "Packets"
	defaultRegistrationsTab       = "Registrations"
	defaultUnsortedTab            = "UNSORTED"
	defaultVetMarker              = "VET"
	defaultNtfyTimeoutSeconds     = 10
)

// Field maps and required labels are filled in by normalize when the file
// leaves them empty; TOML decoding merges into non-nil maps.
func defaultPacketFields() map[string]string {
	return map[string]string{
		"Name":       AttrName,
		"City":       AttrCity,
		"State":      AttrState,
		"Instrument": AttrInstrument,
	}
}

func defaultRegistrationFields() map[string]string {
	return map[string]string{
		"Name":       AttrName,
		"City":       AttrCity,
		"State":      AttrState,
		"Instrument": AttrInstrument,
		"Pronouns":   AttrPronouns,
		"Shoe Size":  AttrShoeSize,
		"Shirt Size": AttrShirtSize,
		"Birthdate":  AttrBirthdate,
		"Experience": AttrExperience,
		"Conflicts":  AttrConflicts,
	}
}

func defaultRequiredLabels() []string {
	return []string{"Name", "Instrument"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Commerce: Commerce{
			BaseURL:           defaultCommerceBaseURL,
			UserAgent:         defaultCommerceUserAgent,
			TimeoutSeconds:    defaultCommerceTimeoutSeconds,
			RequestsPerSecond: defaultCommerceRequestsPerSec,
		},
		Sheets: Sheets{
			TimeoutSeconds: defaultSheetsTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
		},
		Audition: Audition{
			Report: Report{
				PacketsTab:       defaultPacketsTab,
				RegistrationsTab: defaultRegistrationsTab,
			},
			Recruitment: Recruitment{
				UnsortedTab: defaultUnsortedTab,
				VetMarker:   defaultVetMarker,
			},
		},
	}
}
