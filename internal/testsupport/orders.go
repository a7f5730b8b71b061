package testsupport

import "auditionsync/internal/orders"

// Field is a label/value pair for building raw line items.
type Field struct {
	Label string
	Value string
}

// Order builds a raw order the way the commerce client decodes one.
func Order(email, createdOn string, items ...orders.LineItem) orders.Order {
	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, map[string]any(item))
	}
	return orders.Order{
		orders.KeyCustomerEmail: email,
		orders.KeyCreatedOn:     createdOn,
		orders.KeyLineItems:     list,
	}
}

// Item builds a raw line item with custom fields.
func Item(product string, fields ...Field) orders.LineItem {
	custom := make([]any, 0, len(fields))
	for _, f := range fields {
		custom = append(custom, map[string]any{orders.KeyLabel: f.Label, orders.KeyValue: f.Value})
	}
	return orders.LineItem{
		orders.KeyProductName:    product,
		orders.KeyCustomizations: custom,
	}
}

// PacketItem builds a packet line item with the default field labels.
func PacketItem(product, name, city, state, instrument string) orders.LineItem {
	return Item(product,
		Field{"Name", name},
		Field{"City", city},
		Field{"State", state},
		Field{"Instrument", instrument},
	)
}

// RegistrationItem builds a registration line item with the default field labels.
func RegistrationItem(name, city, state, instrument string) orders.LineItem {
	return Item(PercussionRegistration,
		Field{"Name", name},
		Field{"City", city},
		Field{"State", state},
		Field{"Instrument", instrument},
		Field{"Pronouns", "she/her"},
		Field{"Shoe Size", "8"},
		Field{"Shirt Size", "M"},
		Field{"Birthdate", "2008-04-01"},
		Field{"Experience", "3 years"},
		Field{"Conflicts", "None"},
	)
}
