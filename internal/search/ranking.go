package search

import (
	"sort"
	"strings"

	"github.com/localhands/marketplace-api/internal/domain"
)

// Relevance tiers, lower ranks first.
const (
	TierExactName   = 1
	TierNameMatch   = 2
	TierDescription = 3
	TierNone        = 4
)

// Tier places a listing in its relevance tier for query q.
func Tier(listing domain.ListingView, q string) int {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return TierNone
	}
	name := strings.ToLower(listing.ServiceName)
	switch {
	case name == q:
		return TierExactName
	case strings.Contains(name, q):
		return TierNameMatch
	case strings.Contains(strings.ToLower(listing.Description), q):
		return TierDescription
	default:
		return TierNone
	}
}

// Matches reports whether a listing satisfies every filter in c.
func Matches(listing domain.ListingView, c Criteria) bool {
	if c.Query != "" {
		q := strings.ToLower(c.Query)
		if !strings.Contains(strings.ToLower(listing.ServiceName), q) &&
			!strings.Contains(strings.ToLower(listing.Description), q) {
			return false
		}
	}
	if c.Category != "" && listing.Category != c.Category {
		return false
	}
	if c.City != "" && !strings.Contains(strings.ToLower(listing.LocationCity), strings.ToLower(c.City)) {
		return false
	}
	if c.Zip != "" && !strings.HasPrefix(listing.LocationZip, c.Zip) {
		return false
	}
	if c.MinPrice != nil && listing.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && listing.Price > *c.MaxPrice {
		return false
	}
	return true
}

// Less orders a before b under the criteria's sort mode. Every mode ends with
// created_at DESC then id DESC so that pages never drift.
func Less(a, b domain.ListingView, c Criteria) bool {
	switch c.Sort {
	case SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case SortRelevance:
		if c.Query != "" {
			ta, tb := Tier(a, c.Query), Tier(b, c.Query)
			if ta != tb {
				return ta < tb
			}
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Apply filters, orders and windows listings in memory. It returns the page and the
// number of listings matching before pagination.
func Apply(listings []domain.ListingView, c Criteria) ([]domain.ListingView, int) {
	matched := make([]domain.ListingView, 0, len(listings))
	for _, listing := range listings {
		if Matches(listing, c) {
			matched = append(matched, listing)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return Less(matched[i], matched[j], c)
	})

	total := len(matched)
	offset := c.Offset()
	if offset < 0 || offset >= int64(total) {
		return []domain.ListingView{}, total
	}
	end := int(offset) + c.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total
}
