package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhands/marketplace-api/internal/domain"
)

func TestNewCriteria_Defaults(t *testing.T) {
	c := NewCriteria(Params{})

	assert.Equal(t, DefaultPage, c.Page)
	assert.Equal(t, DefaultLimit, c.Limit)
	assert.Equal(t, SortRelevance, c.Sort)
	assert.Empty(t, c.Query)
	assert.Empty(t, c.Category)
	assert.Nil(t, c.MinPrice)
	assert.Equal(t, int64(0), c.Offset())
}

func TestNewCriteria_ClampsPaging(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"0", "0", 1, 1},
		{"-3", "-10", 1, 1},
		{"2", "51", 2, 50},
		{"4", "1000", 4, 50},
		{"abc", "xyz", 1, 12},
		{" 3 ", " 7 ", 3, 7},
		{"9223372036854775807", "50", MaxPage, 50},
		{"99999999999999999999", "12", 1, 12},
	}
	for _, tc := range cases {
		c := NewCriteria(Params{Page: tc.page, Limit: tc.limit})
		assert.Equal(t, tc.wantPage, c.Page, "page %q", tc.page)
		assert.Equal(t, tc.wantLimit, c.Limit, "limit %q", tc.limit)
	}
}

func TestNewCriteria_Filters(t *testing.T) {
	c := NewCriteria(Params{
		Query:    "  plumbing ",
		Category: "All Categories",
		City:     " Pune ",
		Zip:      "4110",
		MinPrice: "10",
		MaxPrice: "oops",
		Page:     "3",
		Limit:    "5",
		Sort:     "PRICE_DESC",
	})

	assert.Equal(t, "plumbing", c.Query)
	assert.Empty(t, c.Category)
	assert.Equal(t, "Pune", c.City)
	assert.Equal(t, "4110", c.Zip)
	require.NotNil(t, c.MinPrice)
	assert.Equal(t, 10.0, *c.MinPrice)
	assert.Nil(t, c.MaxPrice)
	assert.Equal(t, SortPriceDesc, c.Sort)
	assert.Equal(t, int64(10), c.Offset())
}

func TestNewCriteria_KeepsCategory(t *testing.T) {
	c := NewCriteria(Params{Category: "Pet Care"})
	assert.Equal(t, domain.CategoryPetCare, c.Category)
}

func TestParseSort_UnknownFallsBackToRelevance(t *testing.T) {
	assert.Equal(t, SortRelevance, ParseSort("cheapest"))
	assert.Equal(t, SortNewest, ParseSort("newest"))
	assert.Equal(t, SortPriceAsc, ParseSort("price_asc"))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(Criteria{Page: 2, Limit: 12}, 25)
	assert.Equal(t, Pagination{
		CurrentPage:  2,
		TotalPages:   3,
		TotalItems:   25,
		ItemsPerPage: 12,
		HasNextPage:  true,
		HasPrevPage:  true,
	}, p)

	p = NewPagination(Criteria{Page: 1, Limit: 12}, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)

	p = NewPagination(Criteria{Page: 9, Limit: 10}, 20)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNextPage)
}

func TestCriteriaOffset_HugePageStaysPositive(t *testing.T) {
	c := NewCriteria(Params{Page: "9223372036854775807", Limit: "50"})

	assert.Equal(t, int64(MaxPage-1)*50, c.Offset())
	assert.Positive(t, c.Offset())
}
