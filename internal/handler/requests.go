// Package handler provides HTTP handlers for the ItemVault API.
package handler

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the request body against the registration constraints.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateItemRequest is the body of POST /items.
type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Validate checks the item constraints.
func (r CreateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

// UpdateItemRequest is the body of PUT /items/{id}. Absent fields leave the
// stored value unchanged; it maps directly onto domain.ItemPatch.
type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate checks whichever fields are present.
func (r UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}
