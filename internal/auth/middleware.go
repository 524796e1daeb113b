package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/domain"
)

// UserStore defines the user lookup needed to resolve a token subject.
type UserStore interface {
	// GetByUsername retrieves a user by username (case-sensitive exact match).
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Middleware returns an authentication middleware that resolves the bearer
// token of every request into a User before the handler runs.
//
// Every authentication failure is a 401: missing or malformed header,
// undecodable, expired or tampered token, a subject that matches no user,
// and an inactive user (a forbidden-style case deliberately folded into 401
// so the response leaks nothing). A store failure while resolving the
// subject is a 500, not a 401. The middleware is read-only; a valid token
// stays valid until its natural expiry.
func Middleware(verifier TokenVerifier, store UserStore, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			subject, err := verifier.Verify(tokenString)
			if err != nil {
				// The taxonomy (expired, bad signature, malformed) is kept
				// for diagnostics only; the response is uniform.
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := store.GetByUsername(r.Context(), subject)
			if err != nil {
				// A missing user is an authentication failure; anything else
				// is the store misbehaving and must not look like one.
				if errors.Is(err, domain.ErrUserNotFound) {
					log.Debug().Str("subject", subject).Msg("token subject does not resolve to a user")
					writeUnauthorized(w, "invalid or expired token")
					return
				}
				log.Error().Err(err).Str("subject", subject).Msg("failed to resolve token subject")
				writeServerError(w)
				return
			}

			if !user.CanAuthenticate() {
				log.Debug().Err(domain.ErrUserInactive).Str("username", user.Username).Msg("inactive user presented a valid token")
				writeUnauthorized(w, "inactive user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// writeUnauthorized writes a uniform 401 response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServerError writes a generic 500 response.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
