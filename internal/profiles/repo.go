package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
)

// Repository persists the optional per-user profile extension.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Find looks up the extension for userID. A missing row is reported through
// found=false, not as an error.
func (r *Repository) Find(ctx context.Context, userID uuid.UUID) (*models.UserProfile, bool, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *Repository) Update(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"phone":      profile.Phone,
			"department": profile.Department,
			"bio":        profile.Bio,
			"updated_at": time.Now().UTC(),
		}).Error
}
