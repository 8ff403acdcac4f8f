package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhands/marketplace-api/internal/domain"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func view(id, name, description string, category domain.Category, price float64, city, zip string, age time.Duration) domain.ListingView {
	return domain.ListingView{
		Listing: domain.Listing{
			ID:           id,
			ProviderID:   "provider-1",
			ServiceName:  name,
			Description:  description,
			Category:     category,
			Price:        price,
			LocationCity: city,
			LocationZip:  zip,
			CreatedAt:    baseTime.Add(-age),
		},
		ProviderName: "asha",
	}
}

func fixtures() []domain.ListingView {
	return []domain.ListingView{
		view("a", "Emergency Plumbing Repair", "leaks and bursts", domain.CategoryPlumbing, 80, "Mumbai", "400001", 1*time.Hour),
		view("b", "Bathroom fitting", "plumbing and tiles", domain.CategoryPlumbing, 120, "Pune", "411001", 2*time.Hour),
		view("c", "Plumbing", "general work", domain.CategoryPlumbing, 60, "Pune", "411038", 3*time.Hour),
		view("d", "Deep Cleaning", "kitchen and bath", domain.CategoryCleaning, 50, "Pune", "411001", 4*time.Hour),
		view("e", "Dog walking", "daily walks", domain.CategoryPetCare, 15, "New Delhi", "110001", 5*time.Hour),
	}
}

func ids(listings []domain.ListingView) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestTier(t *testing.T) {
	listings := fixtures()
	assert.Equal(t, TierNameMatch, Tier(listings[0], "plumbing"))
	assert.Equal(t, TierDescription, Tier(listings[1], "plumbing"))
	assert.Equal(t, TierExactName, Tier(listings[2], "PLUMBING"))
	assert.Equal(t, TierNone, Tier(listings[3], "plumbing"))
	assert.Equal(t, TierNone, Tier(listings[3], ""))
}

func TestApply_RelevanceOrdersByTierThenNewest(t *testing.T) {
	page, total := Apply(fixtures(), NewCriteria(Params{Query: "Plumbing"}))

	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"c", "a", "b"}, ids(page))
}

func TestApply_RelevanceWithoutQueryIsNewestFirst(t *testing.T) {
	page, total := Apply(fixtures(), NewCriteria(Params{}))

	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(page))
}

func TestApply_PriceSorts(t *testing.T) {
	page, _ := Apply(fixtures(), NewCriteria(Params{Sort: "price_asc"}))
	assert.Equal(t, []string{"e", "d", "c", "a", "b"}, ids(page))

	page, _ = Apply(fixtures(), NewCriteria(Params{Sort: "price_desc"}))
	assert.Equal(t, []string{"b", "a", "c", "d", "e"}, ids(page))
}

func TestApply_FiltersCompose(t *testing.T) {
	page, total := Apply(fixtures(), NewCriteria(Params{City: "pune", Zip: "4110", Category: "Plumbing"}))
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"b", "c"}, ids(page))

	page, total = Apply(fixtures(), NewCriteria(Params{City: "delhi"}))
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"e"}, ids(page))

	_, total = Apply(fixtures(), NewCriteria(Params{Zip: "11001"}))
	assert.Equal(t, 0, total, "zip matches by prefix only")

	page, total = Apply(fixtures(), NewCriteria(Params{MinPrice: "50", MaxPrice: "80"}))
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a", "c", "d"}, ids(page))
}

func TestApply_PaginationWindow(t *testing.T) {
	listings := fixtures()
	for limit := 1; limit <= 6; limit++ {
		all, total := Apply(listings, NewCriteria(Params{Limit: "50"}))
		for page := 1; page <= total/limit+2; page++ {
			got, gotTotal := Apply(listings, NewCriteria(Params{Page: fmt.Sprint(page), Limit: fmt.Sprint(limit)}))
			require.Equal(t, total, gotTotal)

			offset := (page - 1) * limit
			var want []domain.ListingView
			if offset < total {
				end := offset + limit
				if end > total {
					end = total
				}
				want = all[offset:end]
			}
			assert.Equal(t, ids(want), ids(got), "page=%d limit=%d", page, limit)
		}
	}
}

func TestApply_BeyondLastPageIsEmpty(t *testing.T) {
	page, total := Apply(fixtures(), NewCriteria(Params{Page: "10", Limit: "2"}))

	assert.Equal(t, 5, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestApply_MaxIntPageIsEmpty(t *testing.T) {
	page, total := Apply(fixtures(), NewCriteria(Params{Page: "9223372036854775807", Limit: "50"}))

	assert.Equal(t, 5, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, _ = Apply(fixtures(), Criteria{Page: -4, Limit: 2})
	assert.Len(t, page, 2)
}

func TestLess_TieBreaksOnID(t *testing.T) {
	a := view("a", "Same", "", domain.CategoryOther, 10, "X", "1", 0)
	b := view("b", "Same", "", domain.CategoryOther, 10, "X", "1", 0)
	c := NewCriteria(Params{Sort: "price_asc"})

	assert.True(t, Less(b, a, c))
	assert.False(t, Less(a, b, c))
}

type stubFinder struct {
	listings []domain.ListingView
	err      error
	got      Criteria
}

func (s *stubFinder) Search(_ context.Context, c Criteria) ([]domain.ListingView, int, error) {
	s.got = c
	if s.err != nil {
		return nil, 0, s.err
	}
	page, total := Apply(s.listings, c)
	return page, total, nil
}

func TestEngineSearch(t *testing.T) {
	finder := &stubFinder{listings: fixtures()}
	engine := NewEngine(finder, nil)

	result, err := engine.Search(context.Background(), Params{Query: "plumbing", Limit: "2", Page: "2", Category: "All Categories"})

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(result.Listings))
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 3, ItemsPerPage: 2, HasPrevPage: true}, result.Pagination)
	assert.Equal(t, Filters{Query: "plumbing", Sort: SortRelevance}, result.Filters)
	assert.Empty(t, finder.got.Category)
}

func TestEngineSearch_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	engine := NewEngine(&stubFinder{err: storeErr}, nil)

	_, err := engine.Search(context.Background(), Params{})

	assert.ErrorIs(t, err, storeErr)
}
