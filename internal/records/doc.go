// Package records parses configured line items into Packet and Registration
// values.
//
// Parsing never fails outright. A malformed customizations list yields a
// record with empty-string attributes plus an error describing the
// degradation, so one bad line item cannot sink a batch. Rows produced by
// Row always line up with PacketHeaders or RegistrationHeaders.
package records
