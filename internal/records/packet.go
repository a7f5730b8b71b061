package records

import (
	"strconv"
	"strings"
	"time"

	"auditionsync/internal/config"
	"auditionsync/internal/orders"
	"auditionsync/internal/textutil"
)

// PacketHeaders is the column header row for packet data rows.
var PacketHeaders = []string{"First Name", "Last Name", "Email", "City", "State", "Instrument", "Downloaded"}

// Packet is one audition packet download.
type Packet struct {
	Type         string
	FirstName    string
	LastName     string
	Email        string
	City         string
	State        string
	Instrument   string
	DownloadedAt time.Time
}

// ParsePacket builds a Packet from a configured line item. The Packet is
// always usable; a non-nil error means its attributes were left empty.
func ParsePacket(rules *config.Rules, created time.Time, item orders.LineItem, email string) (Packet, error) {
	p := Packet{
		Type:         PacketType(rules, item.ProductName()),
		Email:        strings.TrimSpace(email),
		DownloadedAt: DisplayTime(created),
	}
	var id identity
	err := mapFields(rules, config.ProductPacket, item, func(attr, value string) {
		id.apply(attr, value)
	})
	p.FirstName, p.LastName = id.FirstName, id.LastName
	p.City, p.State, p.Instrument = id.City, id.State, id.Instrument
	return p, err
}

// PacketType strips a leading season year and organization name from a
// packet product name. Names that would strip to nothing are kept whole.
func PacketType(rules *config.Rules, productName string) string {
	name := textutil.CollapseSpace(productName)
	rest := name
	if year := rules.Year(); year > 0 {
		rest = trimPrefixFold(rest, strconv.Itoa(year))
	} else if len(rest) > 5 && isYear(rest[:4]) && rest[4] == ' ' {
		rest = rest[5:]
	}
	if org := rules.Organization(); org != "" {
		rest = trimPrefixFold(rest, org)
	}
	rest = strings.TrimLeft(rest, " -:")
	if rest == "" {
		return name
	}
	return rest
}

// Name is the display name used in recruitment notes.
func (p Packet) Name() string {
	return textutil.Title(p.Type)
}

// Location joins the packet's city and state.
func (p Packet) Location() string {
	return Location(p.City, p.State)
}

// Row renders the packet in PacketHeaders order.
func (p Packet) Row() []string {
	return []string{
		p.FirstName,
		p.LastName,
		p.Email,
		p.City,
		p.State,
		p.Instrument,
		FormatDisplay(p.DownloadedAt),
	}
}

func trimPrefixFold(s, prefix string) string {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s
	}
	rest := s[len(prefix):]
	if rest != "" && rest[0] != ' ' && rest[0] != '-' && rest[0] != ':' {
		return s
	}
	return strings.TrimSpace(rest)
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
