package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/observability"
	"github.com/localhands/marketplace-api/internal/repository"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

func seedUser(t *testing.T, store *repository.MemoryStore, username string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func newTestApp(m *AuthMiddleware, gates ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, gates...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(principal.ID() + "|" + c.Locals(observability.CallerIDLocal).(string))
	})
	app.Get("/", handlers...)
	return app
}

func do(t *testing.T, app *fiber.App, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware_HeaderIdentity(t *testing.T) {
	store := repository.NewMemoryStore()
	user := seedUser(t, store, "asha", domain.RoleServiceProvider)
	app := newTestApp(NewAuthMiddleware(NewTokenManager("secret", 5), store.Users(), true))

	resp := do(t, app, map[string]string{UserIDHeader: user.ID})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	store := repository.NewMemoryStore()
	app := newTestApp(NewAuthMiddleware(NewTokenManager("secret", 5), store.Users(), true))

	cases := map[string]map[string]string{
		"missing":      nil,
		"malformed id": {UserIDHeader: "not-a-uuid"},
		"unknown id":   {UserIDHeader: "0b7f4f3e-4a8e-4d0b-9d55-5a1d7e0d2a11"},
		"bad scheme":   {"Authorization": "Basic abc"},
		"bad token":    {"Authorization": "Bearer garbage"},
	}
	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(t, app, headers).StatusCode)
		})
	}
}

func TestAuthMiddleware_HeaderIdentityDisabled(t *testing.T) {
	store := repository.NewMemoryStore()
	user := seedUser(t, store, "asha", domain.RoleCustomer)
	app := newTestApp(NewAuthMiddleware(NewTokenManager("secret", 5), store.Users(), false))

	resp := do(t, app, map[string]string{UserIDHeader: user.ID})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	store := repository.NewMemoryStore()
	user := seedUser(t, store, "asha", domain.RoleCustomer)
	tokens := NewTokenManager("secret", 5)
	app := newTestApp(NewAuthMiddleware(tokens, store.Users(), false))

	token, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	resp := do(t, app, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	store := repository.NewMemoryStore()
	provider := seedUser(t, store, "asha", domain.RoleServiceProvider)
	customer := seedUser(t, store, "ben", domain.RoleCustomer)
	app := newTestApp(NewAuthMiddleware(NewTokenManager("secret", 5), store.Users(), true), RequireProvider())

	assert.Equal(t, http.StatusOK, do(t, app, map[string]string{UserIDHeader: provider.ID}).StatusCode)
	assert.Equal(t, http.StatusForbidden, do(t, app, map[string]string{UserIDHeader: customer.ID}).StatusCode)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	user := &domain.User{ID: "0b7f4f3e-4a8e-4d0b-9d55-5a1d7e0d2a11", Role: domain.RoleAdmin}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokenManager_RejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken(&domain.User{ID: "u1", Role: domain.RoleCustomer})
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)

	_, err = HashPassword(strings.Repeat("é", 40), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
