package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the optional per-user extension record.
type UserProfile struct {
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Phone      string    `gorm:"column:phone;not null;default:''"`
	Department string    `gorm:"column:department;not null;default:''"`
	Bio        string    `gorm:"column:bio;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profiles" }
