package models

import "time"

// Donation statuses.
const (
	DonationCompleted = "completed"
)

// Donation maps to the `donations` table.
//
// PaymentID carries the gateway transaction reference and is unique: the
// database constraint is the single cross-instance synchronization point for
// duplicate gateway redirects. IsDuplicate is a per-response view flag and is
// never stored.
type Donation struct {
	ID            string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	CampaignID    string    `gorm:"column:campaign_id;size:64;index" json:"campaign_id"`
	UserID        string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Amount        float64   `gorm:"column:amount" json:"amount"`
	PaymentMethod string    `gorm:"column:payment_method;size:50" json:"payment_method"`
	PaymentID     string    `gorm:"column:payment_id;size:191;uniqueIndex" json:"payment_id"`
	Status        string    `gorm:"column:status;size:50" json:"status"`
	IsAnonymous   bool      `gorm:"column:is_anonymous;default:false" json:"is_anonymous"`
	Message       string    `gorm:"column:message;size:500" json:"message"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`

	IsDuplicate bool `gorm:"-" json:"is_duplicate,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}
