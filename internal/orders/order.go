package orders

import (
	"fmt"
	"strings"
	"time"
)

// JSON keys used by the commerce API.
const (
	KeyCustomerEmail  = "customer_email"
	KeyCreatedOn      = "created_on"
	KeyLineItems      = "line_items"
	KeyProductName    = "product_name"
	KeyCustomizations = "customizations"
	KeyLabel          = "label"
	KeyValue          = "value"
)

// Order is one decoded commerce transaction.
type Order map[string]any

// LineItem is one purchased product within an Order.
type LineItem map[string]any

// CustomField is one form answer attached to a line item.
type CustomField struct {
	Label string
	Value string
}

// Email returns the customer email, trimmed. Non-string values yield "".
func (o Order) Email() string {
	return stringField(o, KeyCustomerEmail)
}

// CreatedOn returns the raw creation timestamp text.
func (o Order) CreatedOn() string {
	return stringField(o, KeyCreatedOn)
}

// CreatedAt parses the creation timestamp.
func (o Order) CreatedAt() (time.Time, error) {
	raw, ok := o[KeyCreatedOn]
	if !ok || raw == nil {
		return time.Time{}, fmt.Errorf("missing %s", KeyCreatedOn)
	}
	text, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%s is not a string", KeyCreatedOn)
	}
	return ParseTimestamp(text)
}

// LineItems returns the order's line items. ok is false when the key is
// missing or does not hold a list. Entries that are not objects are returned
// as nil LineItems so positions stay aligned with the raw list.
func (o Order) LineItems() ([]LineItem, bool) {
	list, ok := asList(o[KeyLineItems])
	if !ok {
		return nil, false
	}
	items := make([]LineItem, len(list))
	for i, entry := range list {
		items[i] = asObject(entry)
	}
	return items, true
}

// ProductName returns the trimmed product name.
func (li LineItem) ProductName() string {
	return stringField(li, KeyProductName)
}

// RawCustomizations returns the customizations value untouched.
func (li LineItem) RawCustomizations() (any, bool) {
	if li == nil {
		return nil, false
	}
	v, ok := li[KeyCustomizations]
	return v, ok && v != nil
}

// Customizations decodes the custom fields. ok is false when the value is not
// a list. Malformed entries decode to empty fields.
func (li LineItem) Customizations() ([]CustomField, bool) {
	raw, _ := li.RawCustomizations()
	list, ok := asList(raw)
	if !ok {
		return nil, false
	}
	fields := make([]CustomField, 0, len(list))
	for _, entry := range list {
		obj := asObject(entry)
		fields = append(fields, CustomField{
			Label: stringValue(obj[KeyLabel]),
			Value: stringValue(obj[KeyValue]),
		})
	}
	return fields, true
}

// Has reports whether the key is present with a non-nil value.
func Has(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key]
	return ok && v != nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return stringValue(m[key])
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64, int, int64, bool:
		return strings.TrimSpace(fmt.Sprint(val))
	default:
		return ""
	}
}

func asList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []map[string]any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out, true
	case []LineItem:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func asObject(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return val
	case LineItem:
		return val
	case Order:
		return val
	default:
		return nil
	}
}

// IsObject reports whether v decodes as a JSON object.
func IsObject(v any) bool {
	return asObject(v) != nil
}

// AsList exposes the list check used by the accessors.
func AsList(v any) ([]any, bool) {
	return asList(v)
}

// AsObject exposes the object check used by the accessors.
func AsObject(v any) map[string]any {
	return asObject(v)
}

// StringValue renders a scalar JSON value as trimmed text.
func StringValue(v any) string {
	return stringValue(v)
}
