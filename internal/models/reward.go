package models

import "time"

// RewardTransaction maps to the `reward_transactions` table. One row per
// point accrual, with the running balance after the accrual.
type RewardTransaction struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	DonationID string    `gorm:"column:donation_id;size:64" json:"donation_id"`
	Points     int       `gorm:"column:points" json:"points"`
	Balance    int       `gorm:"column:balance" json:"balance"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (RewardTransaction) TableName() string {
	return "reward_transactions"
}
