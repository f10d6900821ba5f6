package models

import "time"

// PaymentEvent statuses.
const (
	PaymentEventVerified   = "verified"
	PaymentEventRecorded   = "recorded"
	PaymentEventUnrecorded = "verified_unrecorded"
	PaymentEventAbandoned  = "abandoned"
)

// PaymentEvent maps to the `payment_events` table. Every server-verified
// callback leaves a row here; rows stuck in `verified_unrecorded` (payment
// cleared but the donation row could not be written) are retried by the
// reconciler cron until they become `recorded`.
type PaymentEvent struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TransactionRef string    `gorm:"column:transaction_ref;size:191;uniqueIndex" json:"transaction_ref"`
	GatewayOrderID string    `gorm:"column:gateway_order_id;size:191" json:"gateway_order_id"`
	Gateway        string    `gorm:"column:gateway;size:20" json:"gateway"`
	CampaignID     string    `gorm:"column:campaign_id;size:64" json:"campaign_id"`
	UserID         string    `gorm:"column:user_id;size:64" json:"user_id"`
	Amount         float64   `gorm:"column:amount" json:"amount"`
	Status         string    `gorm:"column:status;size:50;index" json:"status"`
	Attempts       int       `gorm:"column:attempts;default:0" json:"attempts"`
	LastError      string    `gorm:"column:last_error;type:text" json:"last_error"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
