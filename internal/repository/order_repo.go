package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// ErrOrderNotFound is returned when no order carries the requested order ID.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository handles the order ledger (`topup_history`).
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order. The callback path never calls it; it exists for
// the ordering side, seeding and tests.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByOrderID returns an order by its external order ID.
func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetStatus returns the current status of an order.
func (r *OrderRepository) GetStatus(ctx context.Context, orderID string) (models.OrderStatus, error) {
	order, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// ConditionalSetStatus moves an order from expected to next in one UPDATE.
// It reports whether a row matched; a false result means the order is absent
// or no longer in the expected status.
func (r *OrderRepository) ConditionalSetStatus(ctx context.Context, orderID string, expected, next models.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, expected).
		Update("status", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByStatus returns order counts grouped by status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
