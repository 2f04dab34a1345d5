package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoginAuditEntry is an append-only record of a successful authentication.
type LoginAuditEntry struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	IPAddress   *string        `gorm:"column:ip_address"`
	LoginSource string         `gorm:"column:login_source;not null"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
	CreatedAt   time.Time      `gorm:"column:created_at;<-:create;not null"`
}

func (LoginAuditEntry) TableName() string { return "login_audit_entries" }

func (e *LoginAuditEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id
	}
	return nil
}
