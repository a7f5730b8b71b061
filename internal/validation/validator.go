package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"auditionsync/internal/config"
	"auditionsync/internal/logging"
	"auditionsync/internal/orders"
	"auditionsync/internal/result"
)

// Validator checks raw orders against the configured product rules.
type Validator struct {
	rules  *config.Rules
	logger *slog.Logger
}

// New binds a validator to frozen rules. A nil logger discards output.
func New(rules *config.Rules, logger *slog.Logger) *Validator {
	return &Validator{
		rules:  rules,
		logger: logging.NewComponentLogger(logger, "validation"),
	}
}

// ValidateOrders accepts []orders.Order or a decoded JSON list. A valid list
// comes back unchanged; otherwise every per-order problem is reported.
func (v *Validator) ValidateOrders(raw any) result.Result[[]orders.Order] {
	if raw == nil {
		return result.Failure[[]orders.Order]("Orders data is missing")
	}

	var list []orders.Order
	var errs []string
	switch val := raw.(type) {
	case []orders.Order:
		if val == nil {
			return result.Failure[[]orders.Order]("Orders data is missing")
		}
		list = val
	default:
		entries, ok := orders.AsList(raw)
		if !ok {
			return result.Failuref[[]orders.Order]("Orders data must be a list, got %T", raw)
		}
		list = make([]orders.Order, len(entries))
		for i, entry := range entries {
			obj := orders.AsObject(entry)
			if obj == nil {
				errs = append(errs, fmt.Sprintf("%s: must be an object", orderLabel(i)))
				continue
			}
			list[i] = orders.Order(obj)
		}
	}

	if len(list) == 0 {
		logging.WarnWithContext(v.logger, "commerce API returned no orders", "orders_empty",
			logging.String(logging.FieldImpact, "report sheets will be rebuilt empty"),
			logging.String(logging.FieldErrorHint, "confirm the store has orders and the API key can read them"),
		)
		return result.Success(list)
	}

	for i, order := range list {
		if order == nil {
			continue
		}
		orderErrs, skipped := v.checkOrder(order, i, true)
		errs = append(errs, orderErrs...)
		for _, reason := range skipped {
			logging.WarnWithContext(v.logger, "order will be skipped", "order_date_invalid",
				logging.String("reason", reason),
				logging.String(logging.FieldImpact, "this order contributes no packets or registrations"),
				logging.String(logging.FieldErrorHint, "inspect the order's created_on in the commerce dashboard"),
			)
		}
	}
	return result.FromErrors(list, errs)
}

// ValidateSingleOrder checks one order. index is 0-based; messages use the
// 1-based "Order #N" label. An unparseable created_on is reported here;
// ValidateOrders only warns about it because the profile builder skips
// such orders.
func (v *Validator) ValidateSingleOrder(order orders.Order, index int) []string {
	errs, _ := v.checkOrder(order, index, false)
	return errs
}

// checkOrder returns the order's problems. With skipBadDate set, an
// unparseable created_on is returned in skipped instead of errs.
func (v *Validator) checkOrder(order orders.Order, index int, skipBadDate bool) (errs, skipped []string) {
	prefix := orderLabel(index)
	if order == nil {
		return []string{prefix + ": must be an object"}, nil
	}

	if order.Email() == "" {
		errs = append(errs, fmt.Sprintf("%s: missing %s", prefix, orders.KeyCustomerEmail))
	}
	if !orders.Has(order, orders.KeyCreatedOn) {
		errs = append(errs, fmt.Sprintf("%s: missing %s", prefix, orders.KeyCreatedOn))
	} else if _, err := order.CreatedAt(); err != nil {
		msg := fmt.Sprintf("%s: invalid %s: %v", prefix, orders.KeyCreatedOn, err)
		if skipBadDate {
			skipped = append(skipped, msg)
		} else {
			errs = append(errs, msg)
		}
	}

	if !orders.Has(order, orders.KeyLineItems) {
		errs = append(errs, fmt.Sprintf("%s: missing %s", prefix, orders.KeyLineItems))
		return errs, skipped
	}
	items, ok := order.LineItems()
	if !ok {
		errs = append(errs, fmt.Sprintf("%s: %s must be a list", prefix, orders.KeyLineItems))
		return errs, skipped
	}
	for i, item := range items {
		errs = append(errs, v.ValidateLineItem(item, fmt.Sprintf("%s, item #%d", prefix, i+1))...)
	}
	return errs, skipped
}

// ValidateLineItem checks a line item. Unconfigured products only need a
// product name.
func (v *Validator) ValidateLineItem(item orders.LineItem, prefix string) []string {
	if item == nil {
		return []string{prefix + ": must be an object"}
	}
	name := item.ProductName()
	if name == "" {
		return []string{fmt.Sprintf("%s: missing %s", prefix, orders.KeyProductName)}
	}
	kind := v.rules.Classify(name)
	if kind == config.ProductUnknown {
		return nil
	}
	raw, ok := item.RawCustomizations()
	if !ok {
		return []string{fmt.Sprintf("%s (%s): missing %s", prefix, name, orders.KeyCustomizations)}
	}
	return ValidateCustomFields(raw, v.rules.RequiredLabels(kind), fmt.Sprintf("%s (%s)", prefix, name))
}

// ConfiguredProduct reports whether name is a packet or registration product.
// Missing rules yield false.
func (v *Validator) ConfiguredProduct(name string) bool {
	if v == nil || strings.TrimSpace(name) == "" {
		return false
	}
	return v.rules.IsConfiguredProduct(name)
}

// ValidateCustomFields checks the customizations list of a configured product.
func ValidateCustomFields(fields any, requiredLabels []string, context string) []string {
	list, ok := orders.AsList(fields)
	if !ok {
		return []string{fmt.Sprintf("%s: %s must be a list", context, orders.KeyCustomizations)}
	}

	var errs []string
	present := make(map[string]struct{}, len(list))
	for i, entry := range list {
		obj := orders.AsObject(entry)
		if obj == nil {
			errs = append(errs, fmt.Sprintf("%s: custom field #%d must be an object", context, i+1))
			continue
		}
		label := orders.StringValue(obj[orders.KeyLabel])
		value := orders.StringValue(obj[orders.KeyValue])
		if label == "" {
			errs = append(errs, fmt.Sprintf("%s: custom field #%d is missing a label", context, i+1))
		} else {
			present[strings.ToLower(label)] = struct{}{}
		}
		if value == "" {
			if label != "" {
				errs = append(errs, fmt.Sprintf("%s: custom field #%d (%s) is missing a value", context, i+1, label))
			} else {
				errs = append(errs, fmt.Sprintf("%s: custom field #%d is missing a value", context, i+1))
			}
		}
	}
	for _, label := range requiredLabels {
		if _, ok := present[strings.ToLower(strings.TrimSpace(label))]; !ok {
			errs = append(errs, fmt.Sprintf("%s: missing required field %q", context, label))
		}
	}
	return errs
}

func orderLabel(index int) string {
	return fmt.Sprintf("Order #%d", index+1)
}
