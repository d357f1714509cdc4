package repository

import (
	"context"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// StockMessageRepository handles the refresh flags of rendered stock messages.
type StockMessageRepository struct {
	db *gorm.DB
}

func NewStockMessageRepository(db *gorm.DB) *StockMessageRepository {
	return &StockMessageRepository{db: db}
}

// FlagAllForRefresh marks every stock message as stale.
func (r *StockMessageRepository) FlagAllForRefresh(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockMessage{}).
		Where("needs_refresh = ?", false).
		Update("needs_refresh", true)
	return result.RowsAffected, result.Error
}
