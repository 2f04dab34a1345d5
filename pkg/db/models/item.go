package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/lostfound-backend/pkg/enums"
)

// Item is a single lost, found or claimed report.
type Item struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name         string           `gorm:"column:name;not null"`
	Description  string           `gorm:"column:description;not null"`
	Category     string           `gorm:"column:category;not null;default:''"`
	Location     string           `gorm:"column:location;not null"`
	Status       enums.ItemStatus `gorm:"column:status;not null"`
	ContactName  string           `gorm:"column:contact_name;not null;default:''"`
	ContactEmail string           `gorm:"column:contact_email;not null;default:''"`
	ImageRef     *string          `gorm:"column:image_ref"`
	DateReported time.Time        `gorm:"column:date_reported;<-:create;not null"`
	OwnerID      *uuid.UUID       `gorm:"column:owner_id;type:uuid"`
}

func (Item) TableName() string { return "items" }

// BeforeCreate assigns a time-ordered id so id order follows insertion order.
func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		i.ID = id
	}
	return nil
}
