// Package profiles ties items to the users who reported them and manages the
// caller's own profile.
package profiles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/internal/users"
	"github.com/angelmondragon/lostfound-backend/pkg/db"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/validation"
)

// Service exposes the ownership and profile operations of the signed-in user.
type Service interface {
	ReportItem(ctx context.Context, userID uuid.UUID, input items.CreateInput) (*items.ItemDTO, error)
	ListOwnedItems(ctx context.Context, userID uuid.UUID) ([]items.ItemDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*ProfileDTO, error)
}

type database interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateDisplayFields(ctx context.Context, id uuid.UUID, fields users.DisplayFields) error
}

type profileStore interface {
	Find(ctx context.Context, userID uuid.UUID) (*models.UserProfile, bool, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// ServiceParams bundles the profile service dependencies. The store
// factories default to the gorm repositories bound to the transaction.
type ServiceParams struct {
	DB              database
	Items           items.Service
	Logger          *logger.Logger
	UserStoreFor    func(tx *gorm.DB) userStore
	ProfileStoreFor func(tx *gorm.DB) profileStore
}

type service struct {
	db              database
	users           userStore
	profiles        profileStore
	items           items.Service
	logg            *logger.Logger
	userStoreFor    func(tx *gorm.DB) userStore
	profileStoreFor func(tx *gorm.DB) profileStore
}

// NewService validates params and builds the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("item service is required")
	}
	userStoreFor := params.UserStoreFor
	if userStoreFor == nil {
		userStoreFor = func(tx *gorm.DB) userStore { return users.NewRepository(tx) }
	}
	profileStoreFor := params.ProfileStoreFor
	if profileStoreFor == nil {
		profileStoreFor = func(tx *gorm.DB) profileStore { return NewRepository(tx) }
	}
	return &service{
		db:              params.DB,
		users:           userStoreFor(params.DB.DB()),
		profiles:        profileStoreFor(params.DB.DB()),
		items:           params.Items,
		logg:            params.Logger,
		userStoreFor:    userStoreFor,
		profileStoreFor: profileStoreFor,
	}, nil
}

func (s *service) ReportItem(ctx context.Context, userID uuid.UUID, input items.CreateInput) (*items.ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	owner := userID
	input.OwnerID = &owner
	return s.items.Create(ctx, input)
}

func (s *service) ListOwnedItems(ctx context.Context, userID uuid.UUID) ([]items.ItemDTO, error) {
	return s.items.ListByOwner(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	profile, found, err := s.profiles.Find(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	owned, err := s.items.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ProfileDTO{User: *users.FromModel(user), Items: owned}
	if found {
		out.Extension = extensionFromModel(profile)
	}
	return out, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	input.normalize()
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userStoreFor(tx)
		profileRepo := s.profileStoreFor(tx)

		if err := userRepo.UpdateDisplayFields(ctx, userID, users.DisplayFields{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
		}); err != nil {
			return err
		}
		if !input.hasExtension() {
			return nil
		}

		profile, found, err := profileRepo.Find(ctx, userID)
		if err != nil {
			return err
		}
		if !found {
			profile = &models.UserProfile{UserID: userID}
			input.apply(profile)
			return profileRepo.Create(ctx, profile)
		}
		input.apply(profile)
		return profileRepo.Update(ctx, profile)
	})
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if s.logg != nil {
			s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "profile.update_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "profile update failed")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "profile.updated")
	}
	return s.GetProfile(ctx, userID)
}
