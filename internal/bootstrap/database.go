package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"paycallback/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows for singleton tables.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

// allModels is the complete schema this service declares. Everything is
// registered here once; nothing is bound lazily at request time.
func allModels() []interface{} {
	return []interface{}{
		// Ledger
		&models.Order{},
		// Donation channel
		&models.User{},
		&models.Setting{},
		// Refresh targets
		&models.StockMessage{},
		// Delivery audit
		&models.CallbackLog{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return ensureDefaultSetting(tx)
	})
}

func ensureDefaultSetting(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	row := models.Setting{
		GuildID:    "default",
		DonateRate: 100,
	}
	return tx.Create(&row).Error
}
