package config

import (
	"maps"
	"slices"
	"strings"
)

// Record attributes a custom-field label can map onto.
const (
	AttrName       = "name"
	AttrFirstName  = "first_name"
	AttrLastName   = "last_name"
	AttrCity       = "city"
	AttrState      = "state"
	AttrInstrument = "instrument"
	AttrPronouns   = "pronouns"
	AttrShoeSize   = "shoe_size"
	AttrShirtSize  = "shirt_size"
	AttrBirthdate  = "birthdate"
	AttrExperience = "experience"
	AttrConflicts  = "conflicts"
)

var knownAttributes = map[string]struct{}{
	AttrName:       {},
	AttrFirstName:  {},
	AttrLastName:   {},
	AttrCity:       {},
	AttrState:      {},
	AttrInstrument: {},
	AttrPronouns:   {},
	AttrShoeSize:   {},
	AttrShirtSize:  {},
	AttrBirthdate:  {},
	AttrExperience: {},
	AttrConflicts:  {},
}

// ProductKind classifies a line item's product name.
type ProductKind int

const (
	ProductUnknown ProductKind = iota
	ProductPacket
	ProductRegistration
)

func (k ProductKind) String() string {
	switch k {
	case ProductPacket:
		return "packet"
	case ProductRegistration:
		return "registration"
	default:
		return "unknown"
	}
}

// Rules is the frozen, year-scoped view of the audition section. Lookups are
// case-insensitive on trimmed input. A Rules value is never modified after
// construction; build a new one to pick up changed configuration.
type Rules struct {
	year                 int
	organization         string
	packetProducts       map[string]struct{}
	registrationProducts map[string]struct{}
	displayNames         map[string]string
	packetFields         map[string]string
	registrationFields   map[string]string
	packetRequired       []string
	registrationRequired []string
	report               Report
	recruitment          Recruitment
}

// Rules freezes the audition section of the config.
func (c *Config) Rules() *Rules {
	return NewRules(c.Audition)
}

// NewRules builds lookup tables from an audition section.
func NewRules(a Audition) *Rules {
	r := &Rules{
		year:                 a.Year,
		organization:         strings.TrimSpace(a.Organization),
		packetProducts:       lowerSet(a.PacketProducts),
		registrationProducts: lowerSet(a.RegistrationProducts),
		displayNames:         make(map[string]string, len(a.RegistrationDisplayNames)),
		packetFields:         lowerKeys(a.PacketFields),
		registrationFields:   lowerKeys(a.RegistrationFields),
		packetRequired:       slices.Clone(a.PacketRequiredLabels),
		registrationRequired: slices.Clone(a.RegistrationRequiredLabels),
		report:               a.Report,
		recruitment: Recruitment{
			SpreadsheetID: a.Recruitment.SpreadsheetID,
			UnsortedTab:   a.Recruitment.UnsortedTab,
			VetMarker:     a.Recruitment.VetMarker,
			Tabs:          make([]RecruitmentTab, 0, len(a.Recruitment.Tabs)),
		},
	}
	for product, display := range a.RegistrationDisplayNames {
		r.displayNames[normalizeKey(product)] = strings.TrimSpace(display)
	}
	for _, tab := range a.Recruitment.Tabs {
		r.recruitment.Tabs = append(r.recruitment.Tabs, RecruitmentTab{
			Name:        tab.Name,
			Instruments: slices.Clone(tab.Instruments),
		})
	}
	return r
}

// Year returns the audition season the rules apply to.
func (r *Rules) Year() int {
	if r == nil {
		return 0
	}
	return r.year
}

// Organization returns the name stripped from packet product names.
func (r *Rules) Organization() string {
	if r == nil {
		return ""
	}
	return r.organization
}

// Classify reports whether a product is a packet, a registration, or neither.
// A nil Rules classifies everything as unknown.
func (r *Rules) Classify(productName string) ProductKind {
	if r == nil {
		return ProductUnknown
	}
	key := normalizeKey(productName)
	if key == "" {
		return ProductUnknown
	}
	if _, ok := r.registrationProducts[key]; ok {
		return ProductRegistration
	}
	if _, ok := r.packetProducts[key]; ok {
		return ProductPacket
	}
	return ProductUnknown
}

// IsConfiguredProduct reports whether the product is a packet or registration product.
func (r *Rules) IsConfiguredProduct(productName string) bool {
	return r.Classify(productName) != ProductUnknown
}

// RegistrationDisplayName resolves the display name for a registration
// product, falling back to the raw product name.
func (r *Rules) RegistrationDisplayName(productName string) string {
	if r != nil {
		if display, ok := r.displayNames[normalizeKey(productName)]; ok && display != "" {
			return display
		}
	}
	return strings.TrimSpace(productName)
}

// FieldAttribute maps a custom-field label onto a record attribute.
func (r *Rules) FieldAttribute(kind ProductKind, label string) (string, bool) {
	if r == nil {
		return "", false
	}
	var fields map[string]string
	switch kind {
	case ProductPacket:
		fields = r.packetFields
	case ProductRegistration:
		fields = r.registrationFields
	default:
		return "", false
	}
	attr, ok := fields[normalizeKey(label)]
	return attr, ok
}

// RequiredLabels returns the custom-field labels a product of the given kind
// must carry.
func (r *Rules) RequiredLabels(kind ProductKind) []string {
	if r == nil {
		return nil
	}
	switch kind {
	case ProductPacket:
		return slices.Clone(r.packetRequired)
	case ProductRegistration:
		return slices.Clone(r.registrationRequired)
	default:
		return nil
	}
}

// Report returns the reporting spreadsheet settings.
func (r *Rules) Report() Report {
	if r == nil {
		return Report{}
	}
	return r.report
}

// Recruitment returns a copy of the recruitment spreadsheet settings.
func (r *Rules) Recruitment() Recruitment {
	if r == nil {
		return Recruitment{}
	}
	out := r.recruitment
	out.Tabs = make([]RecruitmentTab, 0, len(r.recruitment.Tabs))
	for _, tab := range r.recruitment.Tabs {
		out.Tabs = append(out.Tabs, RecruitmentTab{Name: tab.Name, Instruments: slices.Clone(tab.Instruments)})
	}
	return out
}

// RecruitmentEnabled reports whether a recruitment spreadsheet is configured.
func (r *Rules) RecruitmentEnabled() bool {
	return r != nil && r.recruitment.SpreadsheetID != ""
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := normalizeKey(value); key != "" {
			out[key] = struct{}{}
		}
	}
	return out
}

func lowerKeys(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		out[normalizeKey(key)] = values[key]
	}
	return out
}
