package models

import "time"

// User maps to the `users` table. Donors are created by the auth service;
// this service only reads identity and owns the reward point balance.
type User struct {
	ID        string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name      string    `gorm:"column:name;size:200" json:"name"`
	Email     string    `gorm:"column:email;size:200;index" json:"email"`
	Points    int       `gorm:"column:points;default:0" json:"points"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
