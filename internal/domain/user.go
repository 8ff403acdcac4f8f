package domain

import (
	"strings"
	"time"
)

// UserRole enumerates marketplace account roles.
type UserRole string

const (
	RoleCustomer        UserRole = "Customer"
	RoleServiceProvider UserRole = "ServiceProvider"
	RoleAdmin           UserRole = "Admin"
)

// ParseUserRole normalizes a role name. The legacy "Service Provider" spelling is accepted.
func ParseUserRole(raw string) (UserRole, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "")) {
	case "customer":
		return RoleCustomer, true
	case "serviceprovider":
		return RoleServiceProvider, true
	case "admin":
		return RoleAdmin, true
	}
	return "", false
}

// User is an account that can browse, or own listings when it is a provider.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsProvider reports whether the user may own listings.
func (u *User) IsProvider() bool {
	return u != nil && u.Role == RoleServiceProvider
}
