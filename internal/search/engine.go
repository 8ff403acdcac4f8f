package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/domain"
)

// Finder runs a normalized search against a listing store.
type Finder interface {
	Search(ctx context.Context, criteria Criteria) ([]domain.ListingView, int, error)
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	ItemsPerPage int  `json:"items_per_page"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
}

// Filters echoes the effective filters back to the client.
type Filters struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Sort     Sort   `json:"sort"`
}

// Result is one page of listings plus metadata.
type Result struct {
	Listings   []domain.ListingView
	Pagination Pagination
	Filters    Filters
}

// NewPagination computes page metadata for total matching items.
func NewPagination(c Criteria, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + c.Limit - 1) / c.Limit
	}
	return Pagination{
		CurrentPage:  c.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: c.Limit,
		HasNextPage:  c.Page < totalPages,
		HasPrevPage:  c.Page > 1,
	}
}

// Engine answers search requests.
type Engine struct {
	finder Finder
	logger *zap.Logger
}

// NewEngine builds an engine over finder.
func NewEngine(finder Finder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{finder: finder, logger: logger}
}

// Search normalizes params and returns the requested page.
func (e *Engine) Search(ctx context.Context, params Params) (*Result, error) {
	criteria := NewCriteria(params)
	listings, total, err := e.finder.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	if listings == nil {
		listings = []domain.ListingView{}
	}

	e.logger.Debug("listing search",
		zap.String("query", criteria.Query),
		zap.String("sort", string(criteria.Sort)),
		zap.Int("page", criteria.Page),
		zap.Int("limit", criteria.Limit),
		zap.Int("total", total))

	return &Result{
		Listings:   listings,
		Pagination: NewPagination(criteria, total),
		Filters: Filters{
			Query:    criteria.Query,
			Category: string(criteria.Category),
			City:     criteria.City,
			Zip:      criteria.Zip,
			Sort:     criteria.Sort,
		},
	}, nil
}
