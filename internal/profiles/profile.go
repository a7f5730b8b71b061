package profiles

import "auditionsync/internal/records"

// Profile is one candidate, owning at most one packet and one registration.
type Profile struct {
	firstName    string
	lastName     string
	email        string
	city         string
	state        string
	instrument   string
	packet       *records.Packet
	registration *records.Registration
}

func (p Profile) FirstName() string  { return p.firstName }
func (p Profile) LastName() string   { return p.lastName }
func (p Profile) Email() string      { return p.email }
func (p Profile) City() string       { return p.city }
func (p Profile) State() string      { return p.state }
func (p Profile) Instrument() string { return p.instrument }

// Packet returns a copy of the owned packet.
func (p Profile) Packet() (records.Packet, bool) {
	if p.packet == nil {
		return records.Packet{}, false
	}
	return *p.packet, true
}

// Registration returns a copy of the owned registration.
func (p Profile) Registration() (records.Registration, bool) {
	if p.registration == nil {
		return records.Registration{}, false
	}
	return *p.registration, true
}

func (p Profile) HasPacket() bool       { return p.packet != nil }
func (p Profile) HasRegistration() bool { return p.registration != nil }

// Location joins city and state as "City, ST".
func (p Profile) Location() string {
	return records.Location(p.city, p.state)
}

// pendingProfile accumulates one person's records while merging.
type pendingProfile struct {
	firstName    string
	lastName     string
	email        string
	city         string
	state        string
	instrument   string
	packet       *records.Packet
	registration *records.Registration
}

func pendingFromRegistration(r records.Registration) *pendingProfile {
	reg := r
	return &pendingProfile{
		firstName:    r.FirstName,
		lastName:     r.LastName,
		email:        r.Email,
		city:         r.City,
		state:        r.State,
		instrument:   r.Instrument,
		registration: &reg,
	}
}

func pendingFromPacket(p records.Packet) *pendingProfile {
	pk := p
	return &pendingProfile{
		firstName:  p.FirstName,
		lastName:   p.LastName,
		email:      p.Email,
		city:       p.City,
		state:      p.State,
		instrument: p.Instrument,
		packet:     &pk,
	}
}

func (pp *pendingProfile) attachPacket(p records.Packet) {
	pk := p
	pp.packet = &pk
}

func (pp *pendingProfile) freeze() Profile {
	out := Profile{
		firstName:  pp.firstName,
		lastName:   pp.lastName,
		email:      pp.email,
		city:       pp.city,
		state:      pp.state,
		instrument: pp.instrument,
	}
	if pp.packet != nil {
		pk := *pp.packet
		out.packet = &pk
	}
	if pp.registration != nil {
		reg := *pp.registration
		out.registration = &reg
	}
	return out
}

// New assembles a frozen profile directly. It is intended for tests and for
// callers that already hold merged records.
func New(first, last, email, city, state, instrument string, packet *records.Packet, registration *records.Registration) Profile {
	pp := &pendingProfile{
		firstName:    first,
		lastName:     last,
		email:        email,
		city:         city,
		state:        state,
		instrument:   instrument,
		packet:       packet,
		registration: registration,
	}
	return pp.freeze()
}
