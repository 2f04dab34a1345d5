package profiles

import (
	"strings"
	"time"

	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/internal/users"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
)

// ExtensionDTO is the optional profile extension.
type ExtensionDTO struct {
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	Bio        string    `json:"bio"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileDTO is the caller's own profile page.
type ProfileDTO struct {
	User      users.UserDTO   `json:"user"`
	Extension *ExtensionDTO   `json:"profile,omitempty"`
	Items     []items.ItemDTO `json:"items"`
}

// UpdateInput carries the editable fields. Nil extension fields leave the
// extension untouched; when any is set the extension is created on demand.
type UpdateInput struct {
	FirstName  string  `json:"first_name" validate:"max=150"`
	LastName   string  `json:"last_name" validate:"max=150"`
	Email      string  `json:"email" validate:"omitempty,email,max=254"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Bio        *string `json:"bio,omitempty"`
}

func (in *UpdateInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	for _, p := range []*string{in.Phone, in.Department} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func (in UpdateInput) hasExtension() bool {
	return in.Phone != nil || in.Department != nil || in.Bio != nil
}

// apply copies the supplied extension fields onto profile.
func (in UpdateInput) apply(profile *models.UserProfile) {
	if in.Phone != nil {
		profile.Phone = *in.Phone
	}
	if in.Department != nil {
		profile.Department = *in.Department
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
}

func extensionFromModel(p *models.UserProfile) *ExtensionDTO {
	if p == nil {
		return nil
	}
	return &ExtensionDTO{
		Phone:      p.Phone,
		Department: p.Department,
		Bio:        p.Bio,
		UpdatedAt:  p.UpdatedAt,
	}
}
