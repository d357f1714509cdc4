package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user balances for the donation channel.
type UserRepository struct {
	db       *gorm.DB
	settings *SettingRepository
}

func NewUserRepository(db *gorm.DB, settings *SettingRepository) *UserRepository {
	return &UserRepository{db: db, settings: settings}
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByGrowID finds a user by the external GrowID.
func (r *UserRepository) FindByGrowID(ctx context.Context, growID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("grow_id = ?", growID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreditByExternalUser converts a donated amount with the configured donate
// rate and adds it to the balance of the user owning growID. It reports false
// when no such user exists.
func (r *UserRepository) CreditByExternalUser(ctx context.Context, growID string, amount int64) (bool, error) {
	if _, err := r.FindByGrowID(ctx, growID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	rate, err := r.settings.GetDonateRate(ctx)
	if err != nil {
		return false, err
	}
	credit := amount * rate / 100

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("grow_id = ?", growID).
		Update("balance", gorm.Expr("balance + ?", credit))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
