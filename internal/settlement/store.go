package settlement

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"paycallback/internal/models"
	"paycallback/internal/payment"
	"paycallback/internal/repository"
)

// ErrStoreUnavailable means the order ledger could not be read or written.
// The callback is answered with a 5xx so the gateway retries.
var ErrStoreUnavailable = errors.New("order store unavailable")

// OrderRepository is the slice of the order ledger the store needs.
type OrderRepository interface {
	GetStatus(ctx context.Context, orderID string) (models.OrderStatus, error)
	ConditionalSetStatus(ctx context.Context, orderID string, expected, next models.OrderStatus) (bool, error)
}

// ApplyResult reports what ApplyOutcome did. Previous is the status the order
// had before the call, empty when the order does not exist.
type ApplyResult struct {
	Applied  bool
	Previous models.OrderStatus
}

// Store applies canonical outcomes to the order ledger. The conditional update
// is its only concurrency control: of any number of concurrent callers for one
// order, exactly one sees Applied.
type Store struct {
	orders OrderRepository
	logger *zap.Logger
}

func NewStore(orders OrderRepository, logger *zap.Logger) *Store {
	return &Store{orders: orders, logger: logger}
}

func (s *Store) ApplyOutcome(ctx context.Context, orderID string, outcome payment.Outcome) (ApplyResult, error) {
	var next models.OrderStatus
	switch outcome {
	case payment.OutcomePaid:
		next = models.OrderPaid
	case payment.OutcomeCancelled:
		next = models.OrderCancelled
	default:
		return ApplyResult{}, nil
	}

	ok, err := s.orders.ConditionalSetStatus(ctx, orderID, models.OrderPending, next)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("%w: set %s to %s: %v", ErrStoreUnavailable, orderID, next, err)
	}
	if ok {
		s.logger.Info("Order settled",
			zap.String("order_id", orderID),
			zap.String("status", string(next)))
		return ApplyResult{Applied: true, Previous: models.OrderPending}, nil
	}

	current, err := s.orders.GetStatus(ctx, orderID)
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		s.logger.Warn("Order not found", zap.String("order_id", orderID), zap.String("outcome", string(outcome)))
		return ApplyResult{}, nil
	case err != nil:
		// The transition itself did not happen; the lookup only explains why.
		s.logger.Warn("Failed to read order status", zap.String("order_id", orderID), zap.Error(err))
		return ApplyResult{}, nil
	}

	s.logger.Info("Order already resolved",
		zap.String("order_id", orderID),
		zap.String("status", string(current)),
		zap.String("outcome", string(outcome)))
	return ApplyResult{Previous: current}, nil
}
