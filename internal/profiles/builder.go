package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"auditionsync/internal/config"
	"auditionsync/internal/logging"
	"auditionsync/internal/orders"
	"auditionsync/internal/records"
	"auditionsync/internal/result"
	"auditionsync/internal/validation"
)

// Issue describes one order or line item that was skipped or parsed with
// degraded data. Order and Item are 1-based; Item is 0 for order-level issues.
type Issue struct {
	Order   int    `json:"order"`
	Item    int    `json:"item,omitempty"`
	Reason  string `json:"reason"`
	Dropped bool   `json:"dropped"`
}

func (i Issue) String() string {
	label := fmt.Sprintf("Order #%d", i.Order)
	if i.Item > 0 {
		label = fmt.Sprintf("%s, item #%d", label, i.Item)
	}
	if i.Dropped {
		return label + " skipped: " + i.Reason
	}
	return label + " degraded: " + i.Reason
}

// Build is the outcome of a profile build.
type Build struct {
	OrdersProcessed int
	Profiles        []Profile
	Packets         []records.Packet
	Registrations   []records.Registration
	Issues          []Issue
}

// Builder parses orders and merges the records into profiles.
type Builder struct {
	rules  *config.Rules
	logger *slog.Logger
}

// NewBuilder binds a builder to frozen rules.
func NewBuilder(rules *config.Rules, logger *slog.Logger) *Builder {
	return &Builder{
		rules:  rules,
		logger: logging.NewComponentLogger(logger, "profiles"),
	}
}

// Build parses every order and merges the resulting records. Per-order and
// per-item problems are collected as issues and never fail the build; only
// an invalid merged profile does.
func (b *Builder) Build(ctx context.Context, list []orders.Order) result.Result[Build] {
	logger := logging.WithContext(ctx, b.logger)
	out := Build{OrdersProcessed: len(list)}

	for i, order := range list {
		b.collect(logger, i+1, order, &out)
	}

	out.Profiles = merge(out.Registrations, out.Packets)
	logger.Info("profiles built",
		logging.Int("orders", out.OrdersProcessed),
		logging.Int("packets", len(out.Packets)),
		logging.Int("registrations", len(out.Registrations)),
		logging.Int("profiles", len(out.Profiles)),
		logging.Int("issues", len(out.Issues)),
	)

	return result.Map(validation.ValidateProfiles(out.Profiles), func([]Profile) Build {
		return out
	})
}

func (b *Builder) collect(logger *slog.Logger, orderNum int, order orders.Order, out *Build) {
	drop := func(item int, reason string) {
		issue := Issue{Order: orderNum, Item: item, Reason: reason, Dropped: true}
		out.Issues = append(out.Issues, issue)
		logging.WarnWithContext(logger, "order data skipped", "order_skipped",
			logging.String("issue", issue.String()),
			logging.String(logging.FieldImpact, "records from this entry are missing from the sheets"),
			logging.String(logging.FieldErrorHint, "inspect the order in the commerce dashboard"),
		)
	}

	created, err := order.CreatedAt()
	if err != nil {
		drop(0, err.Error())
		return
	}
	items, ok := order.LineItems()
	if !ok || len(items) == 0 {
		drop(0, "missing or invalid "+orders.KeyLineItems)
		return
	}
	email := order.Email()

	for j, item := range items {
		itemNum := j + 1
		if item == nil {
			drop(itemNum, "line item is not an object")
			continue
		}
		kind := b.rules.Classify(item.ProductName())
		var parseErr error
		switch kind {
		case config.ProductPacket:
			var p records.Packet
			p, parseErr = records.ParsePacket(b.rules, created, item, email)
			out.Packets = append(out.Packets, p)
		case config.ProductRegistration:
			var r records.Registration
			r, parseErr = records.ParseRegistration(b.rules, created, item, email)
			out.Registrations = append(out.Registrations, r)
		default:
			logger.Debug("unconfigured product skipped",
				logging.Int("order", orderNum),
				logging.String("product", item.ProductName()),
			)
			continue
		}
		if parseErr != nil {
			issue := Issue{Order: orderNum, Item: itemNum, Reason: parseErr.Error()}
			out.Issues = append(out.Issues, issue)
			logging.WarnWithContext(logger, "line item parsed with empty fields", "item_degraded",
				logging.String("issue", issue.String()),
				logging.String("kind", kind.String()),
				logging.String(logging.FieldImpact, "record kept with blank attributes"),
			)
		}
	}
}

// merge seeds one pending profile per registration, then attaches each packet
// to the profile holding its exact email or starts a new one. A later packet
// for the same email replaces an earlier one.
func merge(registrations []records.Registration, packets []records.Packet) []Profile {
	pending := make([]*pendingProfile, 0, len(registrations)+len(packets))
	byEmail := make(map[string]*pendingProfile, len(registrations)+len(packets))

	for _, r := range registrations {
		pp := pendingFromRegistration(r)
		pending = append(pending, pp)
		if r.Email != "" {
			if _, exists := byEmail[r.Email]; !exists {
				byEmail[r.Email] = pp
			}
		}
	}
	for _, p := range packets {
		if p.Email != "" {
			if pp, ok := byEmail[p.Email]; ok {
				pp.attachPacket(p)
				continue
			}
		}
		pp := pendingFromPacket(p)
		pending = append(pending, pp)
		if p.Email != "" {
			byEmail[p.Email] = pp
		}
	}

	profiles := make([]Profile, 0, len(pending))
	for _, pp := range pending {
		profiles = append(profiles, pp.freeze())
	}
	return profiles
}
