package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// DefaultDonateRate is used when no settings row exists or the rate is unset.
const DefaultDonateRate int64 = 100

// SettingRepository handles the single-row `admin_settings` table.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetSettings returns the single settings row.
func (r *SettingRepository) GetSettings(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetDonateRate returns the donate rate in percent.
func (r *SettingRepository) GetDonateRate(ctx context.Context) (int64, error) {
	setting, err := r.GetSettings(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultDonateRate, nil
	}
	if err != nil {
		return 0, err
	}
	if setting.DonateRate <= 0 {
		return DefaultDonateRate, nil
	}
	return setting.DonateRate, nil
}

// SetDonateRate updates the donate rate.
func (r *SettingRepository) SetDonateRate(ctx context.Context, rate int64) error {
	return r.db.WithContext(ctx).Model(&models.Setting{}).Where("1=1").Update("donate_rate", rate).Error
}
