package domain

import (
	"time"
)

// Item represents a record owned by a single user. Every read and write of
// an item is scoped to its owner.
type Item struct {
	// ID is the unique identifier for the item (auto-generated).
	ID int64 `json:"id"`

	// OwnerID is the ID of the user who created the item.
	OwnerID int64 `json:"owner_id"`

	// Title is the item title. Constraints: 1-200 characters.
	Title string `json:"title"`

	// Description is an optional free-form description, up to 1000 characters.
	Description *string `json:"description"`

	// CreatedAt is the timestamp when the item was created. Immutable.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last update, nil until the item
	// has been updated at least once.
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewItem creates a new Item owned by the given user.
func NewItem(ownerID int64, title string, description *string) *Item {
	return &Item{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// ItemPatch is an optional-field patch for an Item. A nil field means
// "leave unchanged". Patches are applied with Apply, never by reflection.
type ItemPatch struct {
	Title       *string
	Description *string
}

// IsEmpty returns true if the patch carries no changes.
func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// Apply merges the patch into the item and stamps UpdatedAt.
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = p.Description
	}
	now := time.Now().UTC()
	item.UpdatedAt = &now
}
