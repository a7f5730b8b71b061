// Package fetch retrieves orders from the commerce API and validates them
// before any other stage sees them.
package fetch

import (
	"context"
	"errors"
	"log/slog"

	"auditionsync/internal/logging"
	"auditionsync/internal/orders"
	"auditionsync/internal/result"
	"auditionsync/internal/services"
	"auditionsync/internal/validation"
)

// Lister lists every order in the store.
type Lister interface {
	ListOrders(ctx context.Context) ([]orders.Order, error)
}

// Fetcher turns commerce failures into operator-facing messages.
type Fetcher struct {
	lister    Lister
	validator *validation.Validator
	logger    *slog.Logger
}

// New constructs a Fetcher.
func New(lister Lister, validator *validation.Validator, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		lister:    lister,
		validator: validator,
		logger:    logging.NewComponentLogger(logger, "fetch"),
	}
}

// Fetch lists all orders and validates the response shape.
func (f *Fetcher) Fetch(ctx context.Context) result.Result[[]orders.Order] {
	logger := logging.WithContext(ctx, f.logger)
	list, err := f.lister.ListOrders(ctx)
	if err != nil {
		logging.ErrorWithContext(logger, "order fetch failed", "fetch_failed",
			logging.String("error_kind", services.Kind(err)),
			logging.Bool("retryable", services.Retryable(err)),
			logging.Error(err),
		)
		return result.Failure[[]orders.Order](Message(err))
	}
	logger.Info("orders fetched", logging.Int("orders", len(list)))
	return f.validator.ValidateOrders(list)
}

// Message renders a commerce failure for the run summary.
func Message(err error) string {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		return "Commerce API rate limit exceeded; try again later"
	case errors.Is(err, services.ErrTimeout):
		return "Commerce API request timed out"
	case errors.Is(err, services.ErrConnection):
		return "Could not connect to the commerce API"
	case errors.Is(err, services.ErrMalformedResponse):
		return "Commerce API returned a malformed response"
	case errors.Is(err, services.ErrConfiguration):
		return "Commerce API is not configured: " + err.Error()
	default:
		return "Unexpected error fetching orders: " + err.Error()
	}
}
