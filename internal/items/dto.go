package items

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
)

// ItemDTO is the public representation of an item.
type ItemDTO struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Location     string           `json:"location"`
	Status       enums.ItemStatus `json:"status"`
	ContactName  string           `json:"contact_name,omitempty"`
	ContactEmail string           `json:"contact_email,omitempty"`
	ImageRef     *string          `json:"image_ref,omitempty"`
	DateReported time.Time        `json:"date_reported"`
	OwnerID      *uuid.UUID       `json:"owner_id,omitempty"`
}

func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		Location:     m.Location,
		Status:       m.Status,
		ContactName:  m.ContactName,
		ContactEmail: m.ContactEmail,
		ImageRef:     m.ImageRef,
		DateReported: m.DateReported,
		OwnerID:      m.OwnerID,
	}
}

// FromModels maps a slice, never returning nil so JSON renders [].
func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// CreateInput is the caller-supplied part of a new item.
type CreateInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"required"`
	Category     string `json:"category" validate:"max=100"`
	Location     string `json:"location" validate:"required,max=100"`
	Status       string `json:"status" validate:"required,oneof=lost found claimed"`
	ContactName  string `json:"contact_name" validate:"max=100"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=254"`

	OwnerID *uuid.UUID   `json:"-"`
	Image   *ImageUpload `json:"-"`
}

// ImageUpload carries the raw photo bytes of a multipart upload.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
}
