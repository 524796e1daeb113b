// Package service provides business logic services for ItemVault.
package service

import "errors"

// Common service errors. Not-found, conflict and credential failures pass
// through from the domain taxonomy; the sentinels here cover input
// validation and internal failures.
var (
	ErrInvalidUsername    = errors.New("invalid username: must be 3-50 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPassword    = errors.New("invalid password: must be 6-100 characters")
	ErrInvalidTitle       = errors.New("invalid title: must be 1-200 characters")
	ErrInvalidDescription = errors.New("invalid description: must be at most 1000 characters")

	ErrInternalError = errors.New("internal server error")
)
