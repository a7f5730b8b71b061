package records

import (
	"fmt"

	"auditionsync/internal/config"
	"auditionsync/internal/orders"
	"auditionsync/internal/textutil"
)

// identity holds the attributes both record kinds share.
type identity struct {
	FirstName  string
	LastName   string
	City       string
	State      string
	Instrument string
}

// mapFields walks the custom fields of a line item and hands every mapped
// attribute to set. Unmapped labels are ignored. The returned error reports a
// customizations value that is not a list.
func mapFields(rules *config.Rules, kind config.ProductKind, item orders.LineItem, set func(attr, value string)) error {
	fields, ok := item.Customizations()
	if !ok {
		raw, present := item.RawCustomizations()
		if !present {
			return fmt.Errorf("%s has no %s", item.ProductName(), orders.KeyCustomizations)
		}
		return fmt.Errorf("%s: %s is %T, not a list", item.ProductName(), orders.KeyCustomizations, raw)
	}
	for _, field := range fields {
		if field.Label == "" {
			continue
		}
		attr, ok := rules.FieldAttribute(kind, field.Label)
		if !ok {
			continue
		}
		set(attr, field.Value)
	}
	return nil
}

func (id *identity) apply(attr, value string) bool {
	switch attr {
	case config.AttrName:
		id.FirstName, id.LastName = textutil.SplitName(value)
	case config.AttrFirstName:
		id.FirstName = value
	case config.AttrLastName:
		id.LastName = value
	case config.AttrCity:
		id.City = value
	case config.AttrState:
		id.State = NormalizeState(value)
	case config.AttrInstrument:
		id.Instrument = textutil.CollapseSpace(value)
	default:
		return false
	}
	return true
}

// Location joins city and state as "City, ST".
func Location(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
