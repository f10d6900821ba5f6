package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"givepoint/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Campaign{},
		&models.Donation{},
		&models.RewardTransaction{},
		&models.PaymentEvent{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return ensureGeneralFund(tx)
	})
}

// ensureGeneralFund keeps a catch-all campaign so donations whose campaign
// was deleted mid-flight still have somewhere to land.
func ensureGeneralFund(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.Campaign{}).Where("id = ?", "general").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	row := models.Campaign{
		ID:          "general",
		Title:       "General Fund",
		Description: "Unrestricted donations supporting all active campaigns.",
		Status:      "active",
	}
	return tx.Create(&row).Error
}
