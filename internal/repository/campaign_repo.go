package repository

import (
	"gorm.io/gorm"

	"givepoint/internal/models"
)

// CampaignRepository handles campaign database operations.
type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// FindByID returns a campaign by ID.
func (r *CampaignRepository) FindByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindAll returns campaigns with pagination.
func (r *CampaignRepository) FindAll(limit, page int) ([]models.Campaign, int64, error) {
	var campaigns []models.Campaign
	var total int64

	db := r.db.Model(&models.Campaign{}).Where("status = ?", "active")
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// AddDonation bumps the raised total and donor count after a recorded
// donation.
func (r *CampaignRepository) AddDonation(id string, amount float64) error {
	return r.db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"raised":      gorm.Expr("raised + ?", amount),
			"donor_count": gorm.Expr("donor_count + 1"),
		}).Error
}
