package repository

import (
	"gorm.io/gorm"

	"givepoint/internal/models"
)

// RewardRepository handles reward transaction database operations.
type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create records a point accrual.
func (r *RewardRepository) Create(txn *models.RewardTransaction) error {
	return r.db.Create(txn).Error
}

// FindRecentByUserID returns the latest reward transactions for a user.
func (r *RewardRepository) FindRecentByUserID(userID string, limit int) ([]models.RewardTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	var txns []models.RewardTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}
