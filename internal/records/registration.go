package records

import (
	"strings"
	"time"

	"auditionsync/internal/config"
	"auditionsync/internal/orders"
)

// RegistrationHeaders is the column header row for registration data rows.
var RegistrationHeaders = []string{
	"First Name", "Last Name", "Email", "City", "State", "Instrument",
	"Pronouns", "Shoe Size", "Shirt Size", "Birthdate", "Experience", "Conflicts", "Registered",
}

// Registration is one audition registration purchase.
type Registration struct {
	Type         string
	FirstName    string
	LastName     string
	Email        string
	City         string
	State        string
	Instrument   string
	Pronouns     string
	ShoeSize     string
	ShirtSize    string
	Birthdate    string
	Experience   string
	Conflicts    string
	RegisteredAt time.Time
}

// ParseRegistration builds a Registration from a configured line item. Like
// ParsePacket it always returns a usable value.
func ParseRegistration(rules *config.Rules, created time.Time, item orders.LineItem, email string) (Registration, error) {
	r := Registration{
		Type:         rules.RegistrationDisplayName(item.ProductName()),
		Email:        strings.TrimSpace(email),
		RegisteredAt: DisplayTime(created),
	}
	var id identity
	err := mapFields(rules, config.ProductRegistration, item, func(attr, value string) {
		if id.apply(attr, value) {
			return
		}
		switch attr {
		case config.AttrPronouns:
			r.Pronouns = value
		case config.AttrShoeSize:
			r.ShoeSize = value
		case config.AttrShirtSize:
			r.ShirtSize = value
		case config.AttrBirthdate:
			r.Birthdate = value
		case config.AttrExperience:
			r.Experience = value
		case config.AttrConflicts:
			r.Conflicts = value
		}
	})
	r.FirstName, r.LastName = id.FirstName, id.LastName
	r.City, r.State, r.Instrument = id.City, id.State, id.Instrument
	return r, err
}

// Location joins the registration's city and state.
func (r Registration) Location() string {
	return Location(r.City, r.State)
}

// Row renders the registration in RegistrationHeaders order.
func (r Registration) Row() []string {
	return []string{
		r.FirstName,
		r.LastName,
		r.Email,
		r.City,
		r.State,
		r.Instrument,
		r.Pronouns,
		r.ShoeSize,
		r.ShirtSize,
		r.Birthdate,
		r.Experience,
		r.Conflicts,
		FormatDisplay(r.RegisteredAt),
	}
}
