package repository

import (
	"time"

	"gorm.io/gorm"

	"givepoint/internal/models"
)

// PaymentEventRepository handles the callback audit trail and the
// reconciliation queue.
type PaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Upsert records a verified callback, keeping the first row when the same
// transaction reference comes in again.
func (r *PaymentEventRepository) Upsert(event *models.PaymentEvent) error {
	err := r.db.Create(event).Error
	if err != nil && IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// SetStatus moves an event to a new status, recording the cause when one is
// given.
func (r *PaymentEventRepository) SetStatus(transactionRef, status, lastError string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if lastError != "" {
		updates["last_error"] = lastError
		updates["attempts"] = gorm.Expr("attempts + 1")
	}
	return r.db.Model(&models.PaymentEvent{}).
		Where("transaction_ref = ?", transactionRef).
		Updates(updates).Error
}

// FindUnrecorded returns events whose payment verified but whose donation
// row is still missing.
func (r *PaymentEventRepository) FindUnrecorded(limit int) ([]models.PaymentEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.PaymentEvent
	err := r.db.Where("status = ?", models.PaymentEventUnrecorded).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// AbandonOlderThan marks unrecorded events past the cutoff as abandoned so
// the reconciler stops retrying them. Returns the number of rows affected.
func (r *PaymentEventRepository) AbandonOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.PaymentEvent{}).
		Where("status = ? AND created_at < ?", models.PaymentEventUnrecorded, cutoff).
		Updates(map[string]interface{}{
			"status":     models.PaymentEventAbandoned,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
