package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/search"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

func seedProvider(t *testing.T, store *MemoryStore, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: domain.RoleServiceProvider}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestMemoryUsers_UniqueEmailAndUsername(t *testing.T) {
	store := NewMemoryStore()
	seedProvider(t, store, "asha")

	err := store.Users().Create(context.Background(), &domain.User{Username: "other", Email: "ASHA@example.com"})
	assert.True(t, apperrors.IsUniqueViolation(err))

	err = store.Users().Create(context.Background(), &domain.User{Username: "asha", Email: "new@example.com"})
	assert.True(t, apperrors.IsUniqueViolation(err))
}

func TestMemoryUsers_GetByIdentifier(t *testing.T) {
	store := NewMemoryStore()
	user := seedProvider(t, store, "asha")

	byName, err := store.Users().GetByIdentifier(context.Background(), "asha")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := store.Users().GetByIdentifier(context.Background(), "Asha@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.Users().GetByIdentifier(context.Background(), "nobody")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryListings_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	owner := seedProvider(t, store, "asha")
	listings := store.Listings()

	listing := &domain.Listing{
		ProviderID:   owner.ID,
		ServiceName:  "Deep Cleaning",
		Category:     domain.CategoryCleaning,
		Price:        50,
		Availability: &domain.Availability{Days: []string{"Monday"}},
		LocationCity: "Pune",
		LocationZip:  "411001",
	}
	require.NoError(t, listings.Create(ctx, listing))
	require.NotEmpty(t, listing.ID)

	listing.Availability.Days[0] = "Tuesday"
	stored, err := listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday"}, stored.Availability.Days, "store keeps its own copy")

	view, err := listings.GetView(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", view.ProviderName)

	stranger := *stored
	stranger.ProviderID = "someone-else"
	assert.ErrorIs(t, listings.Update(ctx, &stranger), pgx.ErrNoRows)

	stored.Price = 75
	require.NoError(t, listings.Update(ctx, stored))
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))

	assert.ErrorIs(t, listings.Delete(ctx, listing.ID, "someone-else"), pgx.ErrNoRows)
	require.NoError(t, listings.Delete(ctx, listing.ID, owner.ID))
	_, err = listings.GetByID(ctx, listing.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryListings_CreateRequiresProvider(t *testing.T) {
	store := NewMemoryStore()
	err := store.Listings().Create(context.Background(), &domain.Listing{ProviderID: "ghost"})
	assert.Error(t, err)
}

func TestMemoryListings_TimestampsStrictlyIncrease(t *testing.T) {
	store := NewMemoryStore()
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return frozen }
	owner := seedProvider(t, store, "asha")

	var previous time.Time
	for i := 0; i < 3; i++ {
		listing := &domain.Listing{ProviderID: owner.ID, ServiceName: "x", Category: domain.CategoryOther}
		require.NoError(t, store.Listings().Create(context.Background(), listing))
		assert.True(t, listing.CreatedAt.After(previous))
		previous = listing.CreatedAt
	}

	mine, err := store.Listings().ListByProvider(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))
}

func TestMemoryListings_Search(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	owner := seedProvider(t, store, "asha")
	for _, name := range []string{"Plumbing", "Garden care", "Leak plumbing"} {
		require.NoError(t, store.Listings().Create(ctx, &domain.Listing{
			ProviderID: owner.ID, ServiceName: name, Category: domain.CategoryOther, LocationCity: "Pune", LocationZip: "411001",
		}))
	}

	page, total, err := store.Listings().Search(ctx, search.NewCriteria(search.Params{Query: "plumbing"}))

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Plumbing", page[0].ServiceName)
	assert.Equal(t, "asha", page[0].ProviderName)
}
