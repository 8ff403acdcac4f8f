package domain

import "time"

// Category is one of the fixed listing categories.
type Category string

const (
	CategoryPlumbing   Category = "Plumbing"
	CategoryElectrical Category = "Electrical"
	CategoryCleaning   Category = "Cleaning"
	CategoryCarpentry  Category = "Carpentry"
	CategoryPainting   Category = "Painting"
	CategoryGardening  Category = "Gardening"
	CategoryMoving     Category = "Moving"
	CategoryTutoring   Category = "Tutoring"
	CategoryPetCare    Category = "Pet Care"
	CategoryBeauty     Category = "Beauty"
	CategoryOther      Category = "Other"
)

// AllCategories is the sentinel a client sends to disable category filtering.
const AllCategories = "All Categories"

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryPlumbing,
	CategoryElectrical,
	CategoryCleaning,
	CategoryCarpentry,
	CategoryPainting,
	CategoryGardening,
	CategoryMoving,
	CategoryTutoring,
	CategoryPetCare,
	CategoryBeauty,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Placeholder rating values until a rating system exists.
const (
	PlaceholderRatingAverage = 4.5
	PlaceholderRatingCount   = 0
)

// Listing is a provider-owned service offering.
type Listing struct {
	ID           string
	ProviderID   string
	ServiceName  string
	Description  string
	Category     Category
	Price        float64
	Availability *Availability
	LocationCity string
	LocationZip  string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListingView is a listing joined with its provider's display name.
type ListingView struct {
	Listing
	ProviderName string
}
