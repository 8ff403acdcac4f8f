package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/search"
)

// MemoryStore keeps users and listings in process memory with the same constraint and
// ordering semantics as the Postgres schema. It backs the API when no DSN is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	listings map[string]domain.Listing
	now      func() time.Time
	last     time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		listings: make(map[string]domain.Listing),
		now:      time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

// Listings exposes the store as a ListingRepository.
func (s *MemoryStore) Listings() ListingRepository {
	return memoryListings{s}
}

// tick returns a strictly increasing timestamp so creation order is never ambiguous.
// Callers hold s.mu.
func (s *MemoryStore) tick() time.Time {
	now := s.now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

type memoryUsers struct {
	s *MemoryStore
}

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return uniqueViolation("users_email_key")
		}
		if existing.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memoryUsers) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		return strings.EqualFold(u.Email, identifier) || u.Username == identifier
	})
}

func (r memoryUsers) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.User
	for _, user := range r.s.users {
		if !match(user) {
			continue
		}
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			candidate := user
			found = &candidate
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

type memoryListings struct {
	s *MemoryStore
}

func (r memoryListings) Create(_ context.Context, listing *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[listing.ProviderID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "service_listings_provider_id_fkey", Message: "provider does not exist"}
	}
	listing.ID = uuid.NewString()
	listing.CreatedAt = r.s.tick()
	listing.UpdatedAt = listing.CreatedAt
	r.s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r memoryListings) Update(_ context.Context, listing *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.listings[listing.ID]
	if !ok || existing.ProviderID != listing.ProviderID {
		return pgx.ErrNoRows
	}
	listing.CreatedAt = existing.CreatedAt
	listing.UpdatedAt = r.s.tick()
	r.s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r memoryListings) Delete(_ context.Context, id, providerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.listings[id]
	if !ok || existing.ProviderID != providerID {
		return pgx.ErrNoRows
	}
	delete(r.s.listings, id)
	return nil
}

func (r memoryListings) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	listing, ok := r.s.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := cloneListing(listing)
	return &clone, nil
}

func (r memoryListings) GetView(_ context.Context, id string) (*domain.ListingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	listing, ok := r.s.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	view, ok := r.viewOf(listing)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &view, nil
}

func (r memoryListings) ListByProvider(_ context.Context, providerID string) ([]domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Listing{}
	for _, listing := range r.s.listings {
		if listing.ProviderID == providerID {
			result = append(result, cloneListing(listing))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r memoryListings) Search(_ context.Context, criteria search.Criteria) ([]domain.ListingView, int, error) {
	r.s.mu.RLock()
	views := make([]domain.ListingView, 0, len(r.s.listings))
	for _, listing := range r.s.listings {
		if view, ok := r.viewOf(listing); ok {
			views = append(views, view)
		}
	}
	r.s.mu.RUnlock()

	page, total := search.Apply(views, criteria)
	return page, total, nil
}

// viewOf joins a listing with its provider. Callers hold s.mu.
func (r memoryListings) viewOf(listing domain.Listing) (domain.ListingView, bool) {
	provider, ok := r.s.users[listing.ProviderID]
	if !ok {
		return domain.ListingView{}, false
	}
	return domain.ListingView{Listing: cloneListing(listing), ProviderName: provider.Username}, true
}

func cloneListing(listing domain.Listing) domain.Listing {
	if listing.Availability != nil {
		availability := *listing.Availability
		availability.Days = append([]string(nil), listing.Availability.Days...)
		if listing.Availability.Hours != nil {
			hours := *listing.Availability.Hours
			availability.Hours = &hours
		}
		listing.Availability = &availability
	}
	return listing
}
