package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/pkg/db"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/imaging"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/storage"
	"github.com/angelmondragon/lostfound-backend/pkg/validation"
)

// Service exposes item creation and lookup.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ItemDTO, error)
	Get(ctx context.Context, rawID string) (*ItemDTO, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error)
}

type itemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
}

// Invalidator is notified after the catalog changed.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// ServiceParams bundles the dependencies of the item service.
type ServiceParams struct {
	Repo         itemRepository
	Blobs        storage.BlobStore
	ImageOptions imaging.Options
	Invalidator  Invalidator
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	repo        itemRepository
	blobs       storage.BlobStore
	imageOpts   imaging.Options
	invalidator Invalidator
	logg        *logger.Logger
	now         func() time.Time
}

// NewService validates params and builds the item service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("item repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		blobs:       params.Blobs,
		imageOpts:   params.ImageOptions,
		invalidator: params.Invalidator,
		logg:        params.Logger,
		now:         now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ItemDTO, error) {
	input.normalize()
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	status, err := enums.ParseItemStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.NewValidation("status", "must be one of lost found claimed")
	}

	reportedAt := s.now().UTC().Truncate(time.Microsecond)
	item := &models.Item{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Location:     input.Location,
		Status:       status,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		DateReported: reportedAt,
		OwnerID:      input.OwnerID,
	}

	if input.Image != nil && input.Image.Body != nil {
		ref, err := s.storeImage(ctx, input.Image, reportedAt)
		if err != nil {
			return nil, err
		}
		item.ImageRef = &ref
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if item.ImageRef != nil {
			s.discardImage(ctx, *item.ImageRef)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id": item.ID.String(),
			"status":  string(item.Status),
		})
		s.logg.Info(logCtx, "item.created")
	}
	return FromModel(item), nil
}

func (s *service) Get(ctx context.Context, rawID string) (*ItemDTO, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
	}
	return FromModel(item), nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned items")
	}
	return FromModels(rows), nil
}

func (s *service) storeImage(ctx context.Context, upload *ImageUpload, now time.Time) (string, error) {
	if s.blobs == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	processed, err := imaging.Process(upload.Body, s.imageOpts)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return "", pkgerrors.NewValidation("image", "must be a JPEG or PNG image")
		}
		return "", pkgerrors.NewValidation("image", "could not be processed")
	}
	ref, err := s.blobs.Put(ctx, storage.ItemImageKey(now, imaging.OutputExtension), processed.MIME, processed.Data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store item image")
	}
	return ref, nil
}

func (s *service) discardImage(ctx context.Context, ref string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "image_ref", ref), "item.image_cleanup_failed", err)
	}
}
