package domain

import (
	"strings"
	"time"
)

// Role is the access level of a user. It is assigned at registration and
// never changes through the API.
type Role string

const (
	RoleClient  Role = "client"
	RoleAdvisor Role = "advisor"
	RoleAdmin   Role = "admin"
)

// IsStaff reports whether the role may triage other users' requests.
func (r Role) IsStaff() bool {
	return r == RoleAdvisor || r == RoleAdmin
}

// User models a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated actor behind an API call.
type Principal struct {
	UserID int64
	Role   Role
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
