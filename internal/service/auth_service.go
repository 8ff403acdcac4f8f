package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/localhands/marketplace-api/internal/auth"
	"github.com/localhands/marketplace-api/internal/config"
	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/repository"
	"github.com/localhands/marketplace-api/internal/validation"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	validator  *validation.Validator
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	Tokens    *auth.TokenManager
	Validator *validation.Validator
}

// SignupInput describes a registration request.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role" validate:"required,signup_role"`
}

// LoginInput describes a login request. Identifier is an email or a username.
type LoginInput struct {
	Identifier string `json:"email" validate:"notblank"`
	Password   string `json:"password" validate:"required"`
}

// LoginResult is a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		validator:  v,
		bcryptCost: cfg.BcryptCost,
	}
}

// Signup creates a new account. Duplicate emails or usernames are validation failures.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	role, _ := domain.ParseUserRole(input.Role)

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError("validation failed", map[string]any{"password": "password must be at most 72 bytes"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, duplicateAccount(err)
		}
		return nil, err
	}
	return user, nil
}

func duplicateAccount(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "username") {
		return apperrors.NewValidationError("username already taken", map[string]any{"username": "username already taken"})
	}
	return apperrors.NewValidationError("email already registered", map[string]any{"email": "email already registered"})
}

// Login authenticates by email or username and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByIdentifier(ctx, strings.TrimSpace(input.Identifier))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}
