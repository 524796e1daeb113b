// Package repository defines data access interfaces for ItemVault.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/itemvault-io/itemvault/internal/domain"
)

// ListOptions holds pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListResult holds a page of entities plus the total count.
type ListResult[T any] struct {
	Items  []*T
	Total  int64
	Offset int
	Limit  int
}

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
//
// Uniqueness of username and email is enforced by the store's own UNIQUE
// constraints; Create reports a constraint violation as
// domain.ErrUserAlreadyExists. Callers must not rely on a read-then-write
// pre-check, which would race with concurrent registrations.
type UserRepository interface {
	// Create creates a new user and assigns its ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-sensitive exact match).
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)
}

// =============================================================================
// Item Repository
// =============================================================================

// ItemRepository defines the interface for item data access. Every method
// that addresses a single item takes the owner's ID; an item owned by a
// different user is reported as domain.ErrItemNotFound.
type ItemRepository interface {
	// Create creates a new item and assigns its ID.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by ID, scoped to the given owner.
	GetByID(ctx context.Context, id, ownerID int64) (*domain.Item, error)

	// ListByOwner returns the owner's items with pagination, newest first.
	ListByOwner(ctx context.Context, ownerID int64, opts ListOptions) (*ListResult[domain.Item], error)

	// Update persists the mutable fields of an item, scoped to the owner.
	Update(ctx context.Context, item *domain.Item) error

	// Delete deletes an item by ID, scoped to the given owner.
	Delete(ctx context.Context, id, ownerID int64) error
}
