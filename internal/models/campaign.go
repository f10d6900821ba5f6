package models

import "time"

// Campaign maps to the `campaigns` table.
type Campaign struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Title       string    `gorm:"column:title;size:300" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	OwnerID     string    `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	GoalAmount  float64   `gorm:"column:goal_amount" json:"goal_amount"`
	Raised      float64   `gorm:"column:raised;default:0" json:"raised"`
	DonorCount  int64     `gorm:"column:donor_count;default:0" json:"donor_count"`
	Status      string    `gorm:"column:status;size:50;default:active" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
