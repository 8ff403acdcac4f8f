package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localhands/marketplace-api/internal/search"
)

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	q := buildSearchQuery(search.NewCriteria(search.Params{}))

	assert.Contains(t, q.listSQL, "WHERE 1=1")
	assert.Contains(t, q.listSQL, "ORDER BY sl.created_at DESC, sl.id DESC")
	assert.Contains(t, q.listSQL, "LIMIT 12 OFFSET 0")
	assert.Empty(t, q.listArgs)
	assert.Empty(t, q.countArgs)
	assert.NotContains(t, q.countSQL, "LIMIT")
}

func TestBuildSearchQuery_HugePageKeepsPositiveOffset(t *testing.T) {
	q := buildSearchQuery(search.NewCriteria(search.Params{Page: "9223372036854775807", Limit: "50"}))

	assert.Contains(t, q.listSQL, "LIMIT 50 OFFSET 107374182300")
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	q := buildSearchQuery(search.NewCriteria(search.Params{
		Query:    "Deep_Clean 100%",
		Category: "Cleaning",
		City:     "Pune",
		Zip:      "411",
		MinPrice: "10",
		MaxPrice: "99.5",
		Page:     "3",
		Limit:    "20",
		Sort:     "price_asc",
	}))

	assert.Contains(t, q.listSQL, "(sl.service_name ILIKE $1 OR sl.description ILIKE $1)")
	assert.Contains(t, q.listSQL, "sl.category=$2")
	assert.Contains(t, q.listSQL, "sl.location_city ILIKE $3")
	assert.Contains(t, q.listSQL, "sl.location_zip LIKE $4")
	assert.Contains(t, q.listSQL, "sl.price >= $5")
	assert.Contains(t, q.listSQL, "sl.price <= $6")
	assert.Contains(t, q.listSQL, "ORDER BY sl.price ASC, sl.created_at DESC, sl.id DESC")
	assert.Contains(t, q.listSQL, "LIMIT 20 OFFSET 40")
	assert.Equal(t, []any{`%Deep\_Clean 100\%%`, "Cleaning", "%Pune%", "411%", 10.0, 99.5}, q.listArgs)
	assert.Equal(t, q.listArgs, q.countArgs)
}

func TestBuildSearchQuery_RelevanceRanking(t *testing.T) {
	q := buildSearchQuery(search.NewCriteria(search.Params{Query: "Plumbing", Category: "Plumbing"}))

	assert.Contains(t, q.listSQL, "WHEN LOWER(sl.service_name) = LOWER($3) THEN 1")
	assert.Contains(t, q.listSQL, "WHEN sl.service_name ILIKE $1 THEN 2")
	assert.Contains(t, q.listSQL, "WHEN sl.description ILIKE $1 THEN 3")
	assert.Contains(t, q.listSQL, "END, sl.created_at DESC, sl.id DESC")
	assert.Equal(t, []any{"%Plumbing%", "Plumbing", "Plumbing"}, q.listArgs)
	assert.Equal(t, []any{"%Plumbing%", "Plumbing"}, q.countArgs)
}

func TestBuildSearchQuery_NewestIgnoresQueryForOrdering(t *testing.T) {
	q := buildSearchQuery(search.NewCriteria(search.Params{Query: "Cleaning", Sort: "newest"}))

	assert.NotContains(t, q.listSQL, "CASE")
	assert.Contains(t, q.listSQL, "ORDER BY sl.created_at DESC, sl.id DESC")
	assert.Equal(t, []any{"%Cleaning%"}, q.listArgs)
}
