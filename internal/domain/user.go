// Package domain contains the core business entities for ItemVault.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the item management system.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// Users own items and authenticate with a username/password pair.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// Username is the unique username for login and display.
	// Constraints: 3-50 characters.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses or logs.
	PasswordHash string `json:"-"`

	// IsActive indicates whether the user account is active.
	// Inactive users cannot resolve a bearer token to an identity.
	IsActive bool `json:"is_active"`

	// CreatedAt is the timestamp when the user was created. Immutable.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new User with default values.
func NewUser(email, username, passwordHash string) *User {
	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

// CanAuthenticate returns true if the user is allowed to act on the API.
// Credential verification itself does not consult this flag; the request
// identity resolver does.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}
