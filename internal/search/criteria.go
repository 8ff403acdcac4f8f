// Package search normalizes listing search input, defines the ranking used to order
// results and builds pagination metadata for a result page.
package search

import (
	"math"
	"strconv"
	"strings"

	"github.com/localhands/marketplace-api/internal/domain"
)

// Sort selects the ordering of a result page.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNewest    Sort = "newest"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 50
	// MaxPage keeps (page-1)*limit well inside int64 for any allowed limit.
	MaxPage = math.MaxInt32
)

// Params holds raw query string values as received from a client.
type Params struct {
	Query    string
	Category string
	City     string
	Zip      string
	MinPrice string
	MaxPrice string
	Page     string
	Limit    string
	Sort     string
}

// Criteria is a normalized search request. Empty fields impose no constraint.
type Criteria struct {
	Query    string
	Category domain.Category
	City     string
	Zip      string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
	Sort     Sort
}

// NewCriteria normalizes params. Malformed numbers fall back to defaults and are then
// clamped; nothing here is rejected.
func NewCriteria(p Params) Criteria {
	c := Criteria{
		Query: strings.TrimSpace(p.Query),
		City:  strings.TrimSpace(p.City),
		Zip:   strings.TrimSpace(p.Zip),
		Page:  clamp(parseInt(p.Page, DefaultPage), 1, MaxPage),
		Limit: clamp(parseInt(p.Limit, DefaultLimit), 1, MaxLimit),
		Sort:  ParseSort(p.Sort),
	}
	if category := strings.TrimSpace(p.Category); category != "" && !strings.EqualFold(category, domain.AllCategories) {
		c.Category = domain.Category(category)
	}
	c.MinPrice = parsePrice(p.MinPrice)
	c.MaxPrice = parsePrice(p.MaxPrice)
	return c
}

// ParseSort maps a raw sort value, defaulting to relevance.
func ParseSort(raw string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(raw))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortNewest:
		return SortNewest
	default:
		return SortRelevance
	}
}

// Offset is the number of rows skipped before the requested page.
func (c Criteria) Offset() int64 {
	if c.Page <= 1 || c.Limit <= 0 {
		return 0
	}
	return int64(c.Page-1) * int64(c.Limit)
}

// RanksByText reports whether ordering uses the relevance tiers.
func (c Criteria) RanksByText() bool {
	return c.Sort == SortRelevance && c.Query != ""
}

func parseInt(val string, def int) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func parsePrice(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil || parsed < 0 {
		return nil
	}
	return &parsed
}

// clamp bounds v to [min, max]; max <= 0 means unbounded.
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
