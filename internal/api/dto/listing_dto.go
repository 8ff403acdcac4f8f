package dto

import (
	"encoding/json"
	"time"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/search"
)

// ListingRequest payload for create and update. Availability may be an object or a
// JSON-encoded string; price may be a number or a numeric string.
type ListingRequest struct {
	ServiceName  string          `json:"service_name"`
	Description  string          `json:"description"`
	Category     domain.Category `json:"category"`
	Price        Amount          `json:"price"`
	Availability json.RawMessage `json:"availability"`
	LocationCity string          `json:"location_city"`
	LocationZip  string          `json:"location_zip"`
	ImageURL     string          `json:"image_url"`
}

// CreateListingResponse is returned after creation.
type CreateListingResponse struct {
	ListingID string `json:"listing_id"`
}

// ListingResponse is the public listing representation.
type ListingResponse struct {
	ListingID     string               `json:"listing_id"`
	ProviderID    string               `json:"provider_id"`
	ProviderName  string               `json:"provider_name"`
	ServiceName   string               `json:"service_name"`
	Description   string               `json:"description"`
	Category      domain.Category      `json:"category"`
	Price         float64              `json:"price"`
	Availability  *domain.Availability `json:"availability"`
	LocationCity  string               `json:"location_city"`
	LocationZip   string               `json:"location_zip"`
	ImageURL      string               `json:"image_url"`
	RatingAverage float64              `json:"rating_average"`
	RatingCount   int                  `json:"rating_count"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SearchResponse wraps one page of search results.
type SearchResponse struct {
	Listings   []ListingResponse `json:"listings"`
	Pagination search.Pagination `json:"pagination"`
	Filters    search.Filters    `json:"filters"`
}

// ProviderListingsResponse lists one provider's listings.
type ProviderListingsResponse struct {
	Listings []ListingResponse `json:"listings"`
	Count    int               `json:"count"`
}

// NewListingResponse maps a view with the placeholder rating fields.
func NewListingResponse(view domain.ListingView) ListingResponse {
	return ListingResponse{
		ListingID:     view.ID,
		ProviderID:    view.ProviderID,
		ProviderName:  view.ProviderName,
		ServiceName:   view.ServiceName,
		Description:   view.Description,
		Category:      view.Category,
		Price:         view.Price,
		Availability:  view.Availability,
		LocationCity:  view.LocationCity,
		LocationZip:   view.LocationZip,
		ImageURL:      view.ImageURL,
		RatingAverage: domain.PlaceholderRatingAverage,
		RatingCount:   domain.PlaceholderRatingCount,
		CreatedAt:     view.CreatedAt,
		UpdatedAt:     view.UpdatedAt,
	}
}

// NewListingResponses maps views, never returning nil.
func NewListingResponses(views []domain.ListingView) []ListingResponse {
	out := make([]ListingResponse, 0, len(views))
	for _, view := range views {
		out = append(out, NewListingResponse(view))
	}
	return out
}
