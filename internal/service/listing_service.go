package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/events"
	"github.com/localhands/marketplace-api/internal/repository"
	"github.com/localhands/marketplace-api/internal/validation"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

// ListingService coordinates the listing lifecycle: creation, owner-only edits and
// deletes, single reads and per-provider listings.
type ListingService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	validator  *validation.Validator
	logger     *zap.Logger
}

// ListingDependencies bundles requirements for the listing service.
type ListingDependencies struct {
	ListingRepo repository.ListingRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Validator   *validation.Validator
	Logger      *zap.Logger
}

// ListingInput describes the writable fields of a listing. Availability is kept raw so
// it can be decoded from either an object or a JSON-encoded string.
type ListingInput struct {
	ServiceName  string          `json:"service_name" validate:"notblank,max=255"`
	Description  string          `json:"description" validate:"max=1000"`
	Category     domain.Category `json:"category" validate:"required,listing_category"`
	Price        *float64        `json:"price" validate:"required,gte=0,lte=99999999.99"`
	Availability json.RawMessage `json:"availability"`
	LocationCity string          `json:"location_city" validate:"notblank,max=100"`
	LocationZip  string          `json:"location_zip" validate:"notblank,max=20"`
	ImageURL     string          `json:"image_url" validate:"omitempty,max=2048"`
}

// NewListingService constructs the service.
func NewListingService(deps ListingDependencies) *ListingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	return &ListingService{
		listings:   deps.ListingRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		validator:  v,
		logger:     logger,
	}
}

// Create persists a listing owned by ownerID and announces it.
func (s *ListingService) Create(ctx context.Context, input ListingInput, ownerID string) (*domain.Listing, error) {
	listing, err := s.build(input)
	if err != nil {
		return nil, err
	}
	listing.ProviderID = ownerID

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	// The joined read is a separate statement; the listing exists even if it fails.
	view, err := s.listings.GetView(ctx, listing.ID)
	if err != nil {
		s.logger.Warn("listing created but view read failed; skipping broadcast",
			zap.String("listing_id", listing.ID), zap.Error(err))
		return listing, nil
	}

	s.publish(ctx, events.NewEvent(events.EventListingCreated, listing.ID, ownerID,
		events.ListingCreatedPayload{Listing: *view}))
	return listing, nil
}

// Update replaces the writable fields of a listing the caller owns. Concurrent updates
// are last-write-wins.
func (s *ListingService) Update(ctx context.Context, id string, input ListingInput, ownerID string) (*domain.ListingView, error) {
	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return nil, err
	}

	listing, err := s.build(input)
	if err != nil {
		return nil, err
	}
	listing.ID = id
	listing.ProviderID = ownerID

	if err := s.listings.Update(ctx, listing); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventListingUpdated, id, ownerID, events.ListingUpdatedPayload{
		ServiceName: listing.ServiceName,
		Category:    listing.Category,
		Price:       listing.Price,
	}))
	return s.Get(ctx, id)
}

// Delete hard-deletes a listing the caller owns.
func (s *ListingService) Delete(ctx context.Context, id, ownerID string) error {
	existing, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, id, ownerID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.NewEvent(events.EventListingDeleted, id, ownerID,
		events.ListingDeletedPayload{ServiceName: existing.ServiceName}))
	return nil
}

// Get returns one listing joined with its provider's name.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.ListingView, error) {
	if !isUUID(id) {
		return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
	}
	view, err := s.listings.GetView(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		return nil, err
	}
	return view, nil
}

// ListByProvider returns a provider's listings, newest first. Only the provider
// themself or an admin may ask.
func (s *ListingService) ListByProvider(ctx context.Context, providerID string, caller *domain.User) ([]domain.ListingView, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if caller.ID != providerID && caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("you can only view your own listings")
	}
	if !isUUID(providerID) {
		return nil, apperrors.NewNotFound("provider", map[string]any{"id": providerID})
	}

	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"id": providerID})
		}
		return nil, err
	}

	listings, err := s.listings.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ListingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, domain.ListingView{Listing: listing, ProviderName: provider.Username})
	}
	return views, nil
}

// owned loads a listing and checks that ownerID owns it.
func (s *ListingService) owned(ctx context.Context, id, ownerID string) (*domain.Listing, error) {
	if !isUUID(id) {
		return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
	}
	existing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		return nil, err
	}
	if existing.ProviderID != ownerID {
		return nil, apperrors.NewForbidden("you can only modify your own listings")
	}
	return existing, nil
}

func (s *ListingService) build(input ListingInput) (*domain.Listing, error) {
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	input.Description = strings.TrimSpace(input.Description)
	input.LocationCity = strings.TrimSpace(input.LocationCity)
	input.LocationZip = strings.TrimSpace(input.LocationZip)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	availability, err := domain.ParseAvailability(input.Availability)
	if err != nil {
		return nil, apperrors.NewInvalidAvailability(err)
	}

	return &domain.Listing{
		ServiceName:  input.ServiceName,
		Description:  input.Description,
		Category:     input.Category,
		Price:        roundCents(*input.Price),
		Availability: availability,
		LocationCity: input.LocationCity,
		LocationZip:  input.LocationZip,
		ImageURL:     input.ImageURL,
	}, nil
}

func (s *ListingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("listing_id", event.ListingID),
			zap.Error(err))
	}
}

// roundCents rounds half up to two places on the shortest decimal form of price, as
// the NUMERIC(10,2) column does. price is non-negative by the time it gets here.
func roundCents(price float64) float64 {
	whole, frac, found := strings.Cut(strconv.FormatFloat(price, 'f', -1, 64), ".")
	if !found || len(frac) <= 2 {
		return price
	}
	cents, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Round(price*100) / 100
	}
	if frac[2] >= '5' {
		cents++
	}
	return float64(cents) / 100
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
