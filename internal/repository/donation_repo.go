package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"givepoint/internal/models"
)

// DonationRepository handles donation database operations.
type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// CreateIdempotent inserts a donation keyed by its payment ID. When a row
// with the same payment ID already exists (concurrent or repeated gateway
// redirect), the existing row is returned with created=false instead of an
// error: the payment was captured exactly once and the caller must treat
// this as success.
func (r *DonationRepository) CreateIdempotent(donation *models.Donation) (*models.Donation, bool, error) {
	err := r.db.Create(donation).Error
	if err == nil {
		return donation, true, nil
	}
	if !IsDuplicateKeyError(err) {
		return nil, false, err
	}

	existing, ferr := r.FindByPaymentID(donation.PaymentID)
	if ferr != nil {
		// The row exists (the insert conflicted) but cannot be read back.
		return nil, false, ferr
	}
	return existing, false, nil
}

// FindByPaymentID returns the donation holding a gateway transaction
// reference.
func (r *DonationRepository) FindByPaymentID(paymentID string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.Where("payment_id = ?", paymentID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// FindByUserID returns donations made by a user, newest first.
func (r *DonationRepository) FindByUserID(userID string, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 50
	}
	var donations []models.Donation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

// CountByUserID counts completed donations for a user.
func (r *DonationRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Donation{}).
		Where("user_id = ? AND status = ?", userID, models.DonationCompleted).
		Count(&count).Error
	return count, err
}

// IsDuplicateKeyError reports whether err is a uniqueness violation on
// insert. GORM surfaces ErrDuplicatedKey for translated drivers; the message
// checks cover MySQL (1062), SQLite and Postgres wordings for drivers that
// do not translate.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "error 1062") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
