// Package token issues and verifies the signed bearer tokens used to
// authenticate API requests. Tokens are standard JWTs signed with a
// process-wide HMAC secret; they are self-contained and never persisted,
// so a token stays valid until its natural expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/domain"
)

// signingMethods maps configuration algorithm names to JWT signing methods.
var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Claims is the claim set carried by issued tokens. The subject is the
// username; ID is a random UUID so two tokens issued in the same second
// for the same user are still distinct.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and verifies tokens. It is immutable after construction
// and safe for concurrent use; verification is pure computation.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewManager creates a Manager from the auth configuration.
func NewManager(cfg config.AuthConfig) (*Manager, error) {
	method, ok := signingMethods[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("signing secret is empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}

	return &Manager{
		secret: []byte(cfg.SigningSecret),
		method: method,
		ttl:    cfg.TokenTTL,
	}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for the given subject, expiring after the
// configured TTL.
func (m *Manager) Issue(subject string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	tokenString, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of a token and returns its subject.
// Tokens signed with any method other than the configured one are rejected.
// Failures map to domain.ErrTokenExpired, domain.ErrTokenSignatureInvalid
// or domain.ErrTokenMalformed.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	if claims.Subject == "" {
		return "", domain.ErrTokenMalformed
	}

	return claims.Subject, nil
}

// mapJWTError translates library errors into the domain token taxonomy.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
