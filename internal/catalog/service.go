package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/pagination"
)

// DashboardRecentLimit is how many items the dashboard lists.
const DashboardRecentLimit = 5

// Counts are computed over the whole catalog, never the filtered view.
type Counts struct {
	Total   int64 `json:"total"`
	Lost    int64 `json:"lost"`
	Found   int64 `json:"found"`
	Claimed int64 `json:"claimed"`
}

// Facets list the distinct non-empty values available to the filter bar.
type Facets struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// Summary is the cacheable, filter-independent part of a catalog view.
type Summary struct {
	Counts Counts `json:"counts"`
	Facets Facets `json:"facets"`
}

// View is one rendered catalog page.
type View struct {
	Items   []items.ItemDTO `json:"items"`
	Page    pagination.Page `json:"page"`
	Counts  Counts          `json:"counts"`
	Facets  Facets          `json:"facets"`
	Applied Params          `json:"filters"`
}

// Dashboard is the signed-in landing summary.
type Dashboard struct {
	Counts Counts          `json:"counts"`
	Recent []items.ItemDTO `json:"recent_items"`
}

// Service answers catalog and dashboard reads.
type Service interface {
	Browse(ctx context.Context, params Params) (*View, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Invalidate(ctx context.Context)
}

type itemReader interface {
	Query(ctx context.Context, f items.Filter, offset, limit int) ([]models.Item, error)
	Count(ctx context.Context, f items.Filter) (int64, error)
	CountByStatus(ctx context.Context) (map[enums.ItemStatus]int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context) ([]string, error)
	Recent(ctx context.Context, n int) ([]models.Item, error)
}

// ServiceParams bundles the dependencies of the catalog service.
type ServiceParams struct {
	Items    itemReader
	Cache    SummaryCache
	PageSize int
	Logger   *logger.Logger
}

type service struct {
	items    itemReader
	cache    SummaryCache
	pageSize int
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Items == nil {
		return nil, fmt.Errorf("item reader is required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = pagination.CatalogPageSize
	}
	return &service{
		items:    params.Items,
		cache:    params.Cache,
		pageSize: pageSize,
		logg:     params.Logger,
	}, nil
}

func (s *service) Browse(ctx context.Context, params Params) (*View, error) {
	filter := params.Filter()

	matched, err := s.items.Count(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count catalog")
	}
	page := pagination.Resolve(matched, params.Page, s.pageSize)

	rows, err := s.items.Query(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "query catalog")
	}

	summary, err := s.summary(ctx)
	if err != nil {
		return nil, err
	}

	applied := params
	applied.Page = page.Number
	return &View{
		Items:   items.FromModels(rows),
		Page:    page,
		Counts:  summary.Counts,
		Facets:  summary.Facets,
		Applied: applied,
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.items.Recent(ctx, DashboardRecentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recent items")
	}
	return &Dashboard{Counts: counts, Recent: items.FromModels(rows)}, nil
}

// Invalidate drops the cached summary after a catalog write.
func (s *service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *service) summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	counts, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.items.DistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	locations, err := s.items.DistinctLocations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}

	summary := &Summary{
		Counts: counts,
		Facets: Facets{
			Categories: nonNil(categories),
			Locations:  nonNil(locations),
		},
	}
	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	if s.logg != nil {
		s.logg.Debug(ctx, "catalog.summary_recomputed")
	}
	return summary, nil
}

func (s *service) counts(ctx context.Context) (Counts, error) {
	byStatus, err := s.items.CountByStatus(ctx)
	if err != nil {
		return Counts{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count items by status")
	}
	c := Counts{
		Lost:    byStatus[enums.ItemStatusLost],
		Found:   byStatus[enums.ItemStatusFound],
		Claimed: byStatus[enums.ItemStatusClaimed],
	}
	for _, n := range byStatus {
		c.Total += n
	}
	return c, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
