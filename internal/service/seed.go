package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/domain"
)

// demoListings are the sample services added by Seed.
var demoListings = []ListingInput{
	{
		ServiceName:  "Professional House Cleaning",
		Description:  "Deep cleaning service for your home. We clean every corner with eco-friendly products and attention to detail.",
		Category:     domain.CategoryCleaning,
		Price:        price(85),
		Availability: json.RawMessage(`{"days":["Monday","Tuesday","Wednesday","Thursday","Friday"],"hours":{"start":"08:00","end":"17:00"}}`),
		LocationCity: "New York",
		LocationZip:  "10001",
		ImageURL:     "https://images.unsplash.com/photo-1558618047-3c8c76ca7d13?w=400",
	},
	{
		ServiceName:  "Emergency Plumbing Services",
		Description:  "24/7 emergency plumbing repairs including leak fixes, pipe installation, and drain cleaning by licensed professionals.",
		Category:     domain.CategoryPlumbing,
		Price:        price(120),
		Availability: json.RawMessage(`{"days":["Monday","Tuesday","Wednesday","Thursday","Friday","Saturday","Sunday"],"hours":{"start":"00:00","end":"23:59"}}`),
		LocationCity: "New York",
		LocationZip:  "10002",
		ImageURL:     "https://images.unsplash.com/photo-1607472586893-edb57bdc0e39?w=400",
	},
}

func price(v float64) *float64 { return &v }

// Seed creates the demo listings for ownerID through Create, so each one is
// broadcast like any other new listing.
func (s *ListingService) Seed(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	created := make([]*domain.Listing, 0, len(demoListings))
	for _, input := range demoListings {
		listing, err := s.Create(ctx, input, ownerID)
		if err != nil {
			return created, err
		}
		created = append(created, listing)
	}
	s.logger.Info("demo listings seeded", zap.String("provider_id", ownerID), zap.Int("count", len(created)))
	return created, nil
}
