package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/metrics"
	"github.com/itemvault-io/itemvault/internal/repository/sqlite"
	"github.com/itemvault-io/itemvault/internal/service"
	"github.com/itemvault-io/itemvault/internal/token"
)

const testSigningSecret = "test-signing-secret-0123456789abcdef"

// newTestAPI wires the full stack over an in-memory SQLite database.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	users := service.NewUserService(sqlite.NewUserRepository(db), logger)
	items := service.NewItemService(sqlite.NewItemRepository(db), logger)

	tokens, err := token.NewManager(config.AuthConfig{
		SigningSecret: testSigningSecret,
		Algorithm:     "HS256",
		TokenTTL:      time.Minute,
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.MaxBodySize = 1 << 20
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	return NewRouter(RouterConfig{
		Users:   users,
		Items:   items,
		Tokens:  tokens,
		Metrics: metrics.New(),
		Config:  cfg,
		Logger:  logger,
		Version: "test",
	})
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user and returns a valid access token.
func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tr TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	require.Equal(t, "bearer", tr.TokenType)
	require.NotEmpty(t, tr.AccessToken)
	return tr.AccessToken
}

func TestHealth(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])
}

func TestRegister(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
	require.True(t, user.IsActive)
	require.NotZero(t, user.ID)

	// The password hash must never appear in a response.
	require.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicate(t *testing.T) {
	h := newTestAPI(t)

	payload := map[string]string{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "secret123",
	}
	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Same email under a different username is still a conflict.
	rec = doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "bob@example.com",
		"username": "robert",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"username": "carol", "password": "secret123"}},
		{"bad email", map[string]string{"email": "not-an-email", "username": "carol", "password": "secret123"}},
		{"short username", map[string]string{"email": "carol@example.com", "username": "ca", "password": "secret123"}},
		{"short password", map[string]string{"email": "carol@example.com", "username": "carol", "password": "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/auth/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	h := newTestAPI(t)
	registerAndLogin(t, h, "dave")

	// Wrong password and unknown username must be indistinguishable.
	recWrongPass := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "dave",
		"password": "wrong-password",
	})
	recUnknown := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "wrong-password",
	})

	require.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	require.JSONEq(t, recWrongPass.Body.String(), recUnknown.Body.String())
	require.Equal(t, "Bearer", recWrongPass.Header().Get("WWW-Authenticate"))
}

func TestMe(t *testing.T) {
	h := newTestAPI(t)
	accessToken := registerAndLogin(t, h, "erin")

	rec := doJSON(t, h, http.MethodGet, "/auth/me", accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "erin", user.Username)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestAPI(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/items"},
		{http.MethodPost, "/items"},
		{http.MethodGet, "/items/1"},
		{http.MethodPut, "/items/1"},
		{http.MethodDelete, "/items/1"},
	}
	for _, p := range paths {
		rec := doJSON(t, h, p.method, p.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)

		rec = doJSON(t, h, p.method, p.path, "not-a-token", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s with garbage token", p.method, p.path)
	}
}

func TestItemCRUD(t *testing.T) {
	h := newTestAPI(t)
	accessToken := registerAndLogin(t, h, "frank")

	// Create
	rec := doJSON(t, h, http.MethodPost, "/items", accessToken, map[string]string{
		"title":       "first item",
		"description": "a description",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, "first item", created.Title)
	require.NotNil(t, created.Description)
	require.Nil(t, created.UpdatedAt)

	// Get
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/items/%d", created.ID), accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Partial update: description only, title must survive.
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/items/%d", created.ID), accessToken, map[string]string{
		"description": "updated description",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "first item", updated.Title)
	require.Equal(t, "updated description", *updated.Description)
	require.NotNil(t, updated.UpdatedAt)

	// Delete
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/items/%d", created.ID), accessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/items/%d", created.ID), accessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemListPagination(t *testing.T) {
	h := newTestAPI(t)
	accessToken := registerAndLogin(t, h, "grace")

	for i := 0; i < 5; i++ {
		rec := doJSON(t, h, http.MethodPost, "/items", accessToken, map[string]string{
			"title": fmt.Sprintf("item %d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/items?limit=2&offset=1", accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)

	// No items: an empty JSON array, not null.
	other := registerAndLogin(t, h, "heidi")
	rec = doJSON(t, h, http.MethodGet, "/items", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestItemOwnershipIsolation(t *testing.T) {
	h := newTestAPI(t)
	ivanToken := registerAndLogin(t, h, "ivan")
	judyToken := registerAndLogin(t, h, "judy")

	rec := doJSON(t, h, http.MethodPost, "/items", ivanToken, map[string]string{
		"title": "ivan's item",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	path := fmt.Sprintf("/items/%d", item.ID)

	// A foreign item is indistinguishable from a missing one.
	rec = doJSON(t, h, http.MethodGet, path, judyToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPut, path, judyToken, map[string]string{"title": "stolen"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, path, judyToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// The owner still sees it, untouched.
	rec = doJSON(t, h, http.MethodGet, path, ivanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, "ivan's item", item.Title)

	// Judy's list does not include it either.
	rec = doJSON(t, h, http.MethodGet, "/items", judyToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Empty(t, items)
}

func TestItemValidation(t *testing.T) {
	h := newTestAPI(t)
	accessToken := registerAndLogin(t, h, "mallory")

	rec := doJSON(t, h, http.MethodPost, "/items", accessToken, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/items", accessToken, map[string]interface{}{
		"title":   "ok",
		"unknown": true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/items/not-a-number", accessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
