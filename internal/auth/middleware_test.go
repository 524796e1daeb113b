package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/token"
)

// stubUserStore resolves a fixed set of users by username.
type stubUserStore struct {
	users map[string]*domain.User
}

func (s *stubUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newTestManager(t *testing.T, ttl time.Duration) *token.Manager {
	t.Helper()
	m, err := token.NewManager(config.AuthConfig{
		SigningSecret: "test-signing-secret-test-signing-secret",
		Algorithm:     "HS256",
		TokenTTL:      ttl,
	})
	require.NoError(t, err)
	return m
}

func TestMiddlewareResolvesUser(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	alice := &domain.User{ID: 1, Username: "alice", Email: "alice@x.com", IsActive: true}
	store := &stubUserStore{users: map[string]*domain.User{"alice": alice}}

	var got *domain.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		got = u
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(mgr, store, zerolog.Nop())(inner)

	tok, err := mgr.Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, alice, got)
}

func TestMiddlewareRejectsMissingOrBadHeader(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	store := &stubUserStore{users: map[string]*domain.User{}}
	handler := Middleware(mgr, store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	headers := []string{
		"",             // missing
		"Basic abc",    // wrong scheme
		"Bearer",       // no token
		"Bearer    ",   // blank token
		"bearer-token", // not a scheme/token pair
	}

	for _, h := range headers {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		require.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	alice := &domain.User{ID: 1, Username: "alice", IsActive: true}
	store := &stubUserStore{users: map[string]*domain.User{"alice": alice}}
	handler := Middleware(mgr, store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	expiredMgr := newTestManager(t, -time.Minute)
	expired, err := expiredMgr.Issue("alice")
	require.NoError(t, err)

	otherMgr, err := token.NewManager(config.AuthConfig{
		SigningSecret: "another-signing-secret-another-secret",
		Algorithm:     "HS256",
		TokenTTL:      time.Hour,
	})
	require.NoError(t, err)
	forged, err := otherMgr.Issue("alice")
	require.NoError(t, err)

	tokens := map[string]string{
		"malformed": "not.a.jwt",
		"expired":   expired,
		"forged":    forged,
	}

	for name, tok := range tokens {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "case %s", name)
	}
}

func TestMiddlewareRejectsUnknownSubject(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	store := &stubUserStore{users: map[string]*domain.User{}}
	handler := Middleware(mgr, store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	tok, err := mgr.Issue("ghost")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// failingUserStore simulates a store that cannot be reached.
type failingUserStore struct {
	err error
}

func (s *failingUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, s.err
}

func TestMiddlewareStoreFailureIsServerError(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	store := &failingUserStore{err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}
	handler := Middleware(mgr, store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	// A valid token for an existing-looking subject: the only failure here
	// is the store, and it must not masquerade as an authentication failure.
	tok, err := mgr.Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestMiddlewareRejectsInactiveUser(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	bob := &domain.User{ID: 2, Username: "bob", IsActive: false}
	store := &stubUserStore{users: map[string]*domain.User{"bob": bob}}
	handler := Middleware(mgr, store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	// A token issued while the account was active stays verifiable, but
	// the resolver refuses it once the account is inactive.
	tok, err := mgr.Issue("bob")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
