package items

import (
	"context"

	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const catalogOrder = "date_reported DESC, id ASC"

// Repository exposes item persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an items repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts item in a single statement.
func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads one item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Query returns one window of the filtered catalog in catalog order.
func (r *Repository) Query(ctx context.Context, f Filter, offset, limit int) ([]models.Item, error) {
	var rows []models.Item
	err := r.filtered(ctx, f).
		Order(catalogOrder).
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Count returns the number of items matching f.
func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

// CountByStatus groups the whole catalog by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.ItemStatus]int64, error) {
	var rows []struct {
		Status enums.ItemStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.ItemStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// DistinctCategories lists non-empty categories alphabetically.
func (r *Repository) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

// DistinctLocations lists non-empty locations alphabetically.
func (r *Repository) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "location")
}

// Recent returns the n most recently reported items.
func (r *Repository) Recent(ctx context.Context, n int) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).Order(catalogOrder).Limit(n).Find(&rows).Error
	return rows, err
}

// ListByOwner returns every item reported by ownerID, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(catalogOrder).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Distinct(column).
		Where(column+" <> ''").
		Order(column).
		Pluck(column, &values).Error
	return values, err
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Item{})
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}
