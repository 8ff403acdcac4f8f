package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/observability"
	"github.com/localhands/marketplace-api/internal/repository"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

const principalKey = "auth_principal"

// UserIDHeader carries the caller's user id when header identity is enabled.
const UserIDHeader = "X-User-ID"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// ID returns the caller's user id.
func (p *Principal) ID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// Role returns the caller's role.
func (p *Principal) Role() domain.UserRole {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Role
}

// AuthMiddleware resolves the caller from a bearer token or, when allowed, the
// X-User-ID header, and loads the matching user.
type AuthMiddleware struct {
	tokens      *TokenManager
	users       repository.UserRepository
	allowHeader bool
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, allowHeader bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, allowHeader: allowHeader}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	userID, err := m.callerID(c)
	if err != nil {
		return err
	}

	// Malformed ids never reach the store; postgres would reject them as a syntax error.
	if _, err := uuid.Parse(userID); err != nil {
		return apperrors.NewUnauthorized("invalid user identity")
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user})
	c.Locals(observability.CallerIDLocal, user.ID)
	return c.Next()
}

func (m *AuthMiddleware) callerID(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", apperrors.NewUnauthorized("invalid token")
		}
		return claims.Subject, nil
	}

	if m.allowHeader {
		if id := strings.TrimSpace(c.Get(UserIDHeader)); id != "" {
			return id, nil
		}
	}
	return "", apperrors.NewUnauthorized("authentication required")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
