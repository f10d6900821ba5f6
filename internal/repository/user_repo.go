package repository

import (
	"gorm.io/gorm"

	"givepoint/internal/models"
)

// UserRepository handles donor database operations.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by ID.
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureExists creates a bare user row when the ID has not been seen yet.
// The auth service owns user profiles; this keeps the points balance
// attachable even for first-time donors.
func (r *UserRepository) EnsureExists(id string) error {
	if id == "" {
		return nil
	}
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&models.User{ID: id}).Error
}

// AddPoints atomically increments a user's point balance and returns the new
// total.
func (r *UserRepository) AddPoints(id string, points int) (int, error) {
	if err := r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error; err != nil {
		return 0, err
	}
	var user models.User
	if err := r.db.Select("points").Where("id = ?", id).First(&user).Error; err != nil {
		return 0, err
	}
	return user.Points, nil
}
