package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/service"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service/domain error onto an HTTP response.
// Unexpected errors surface as a generic 500 so nothing internal leaks.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidDescription):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "email or username already registered")

	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "incorrect username or password")

	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")

	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")

	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
