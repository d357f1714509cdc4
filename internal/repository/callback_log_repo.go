package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// CallbackLogRepository stores one row per gateway delivery.
type CallbackLogRepository struct {
	db *gorm.DB
}

func NewCallbackLogRepository(db *gorm.DB) *CallbackLogRepository {
	return &CallbackLogRepository{db: db}
}

// Record inserts a delivery log row.
func (r *CallbackLogRepository) Record(ctx context.Context, entry *models.CallbackLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID returns a log row by ID.
func (r *CallbackLogRepository) FindByID(ctx context.Context, id uint) (*models.CallbackLog, error) {
	var entry models.CallbackLog
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByOrderID returns the most recent deliveries for an order.
func (r *CallbackLogRepository) FindByOrderID(ctx context.Context, orderID string, limit int) ([]models.CallbackLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.CallbackLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DeleteOlderThan removes rows created before cutoff and returns how many went.
func (r *CallbackLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.CallbackLog{})
	return result.RowsAffected, result.Error
}
