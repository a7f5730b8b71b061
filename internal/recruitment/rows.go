package recruitment

import (
	"slices"
	"strings"

	"auditionsync/internal/profiles"
)

// Column positions on recruitment tabs.
const (
	ColVet = iota
	ColFirstName
	ColLastName
	ColEmail
	ColLocation
	ColStatus
	ColPacket
	ColRegistered
	ColNotes
	rowWidth
)

const (
	StatusRegistered = "REGISTERED"
	flagYes          = "Y"
	noteSeparator    = "; "
)

// Headers is the column header row written to UNSORTED.
var Headers = []string{"Vet", "First Name", "Last Name", "Email", "Location", "Status", "Packet", "Registered", "Notes"}

// RowBuilder applies profile state to recruitment rows.
type RowBuilder struct {
	VetMarker string
}

// IsPersonRow reports whether a tab row describes a person: the first cell
// holds the vet marker, or it is blank and a first name is present.
func (rb RowBuilder) IsPersonRow(row []string) bool {
	first := cell(row, ColVet)
	if rb.VetMarker != "" && first == rb.VetMarker {
		return true
	}
	return first == "" && cell(row, ColFirstName) != ""
}

// Apply returns a padded copy of row with the profile's packet and
// registration marks. Notes already present are not added again.
func (rb RowBuilder) Apply(row []string, p profiles.Profile, multiInstrument bool) []string {
	out := pad(row)
	if pk, ok := p.Packet(); ok {
		out[ColPacket] = flagYes
		notes := []string{"Downloaded " + pk.Name()}
		if multiInstrument {
			instrument := pk.Instrument
			if reg, ok := p.Registration(); ok && strings.TrimSpace(reg.Instrument) != "" {
				instrument = reg.Instrument
			}
			if instrument = strings.TrimSpace(instrument); instrument != "" {
				notes = append(notes, "Marked instrument as "+instrument)
			}
		}
		out[ColNotes] = prependNotes(out[ColNotes], notes...)
	}
	if p.HasRegistration() {
		out[ColStatus] = StatusRegistered
		out[ColRegistered] = flagYes
	}
	return out
}

// NewRow builds an UNSORTED row for a profile that no tab lists yet.
func (rb RowBuilder) NewRow(p profiles.Profile, multiInstrument bool) []string {
	row := make([]string, rowWidth)
	row[ColFirstName] = p.FirstName()
	row[ColLastName] = p.LastName()
	row[ColEmail] = p.Email()
	if pk, ok := p.Packet(); ok {
		row[ColLocation] = pk.Location()
	} else {
		row[ColLocation] = p.Location()
	}
	return rb.Apply(row, p, multiInstrument)
}

// prependNotes puts new notes ahead of the cell's existing text, skipping
// any note the cell already mentions. The existing text is kept verbatim;
// a formula cell stays a formula with the notes concatenated in front.
func prependNotes(existing string, notes ...string) string {
	lowered := strings.ToLower(existing)
	var fresh []string
	for _, note := range notes {
		if note == "" || strings.Contains(lowered, strings.ToLower(note)) || containsFold(fresh, note) {
			continue
		}
		fresh = append(fresh, note)
	}
	if len(fresh) == 0 {
		return existing
	}
	added := strings.Join(fresh, noteSeparator)
	switch {
	case strings.TrimSpace(existing) == "":
		return added
	case len(existing) > 1 && existing[0] == '=':
		quoted := strings.ReplaceAll(added+noteSeparator, `"`, `""`)
		return `="` + quoted + `"&` + existing[1:]
	default:
		return added + noteSeparator + existing
	}
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}

func pad(row []string) []string {
	out := make([]string, max(len(row), rowWidth))
	copy(out, row)
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
