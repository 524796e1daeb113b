package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/repository"
)

// createTestUser inserts a user to own items; items carry a foreign key.
func createTestUser(t *testing.T, db *DB, username string) *domain.User {
	t.Helper()

	user := domain.NewUser(username+"@example.com", username, "h")
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestItemRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice")

	desc := "a description"
	item := domain.NewItem(owner.ID, "first", &desc)
	require.NoError(t, repo.Create(ctx, item))
	require.NotZero(t, item.ID)

	got, err := repo.GetByID(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, "first", got.Title)
	require.NotNil(t, got.Description)
	require.Equal(t, desc, *got.Description)
	require.Nil(t, got.UpdatedAt)

	// Nil description round-trips as NULL.
	bare := domain.NewItem(owner.ID, "bare", nil)
	require.NoError(t, repo.Create(ctx, bare))
	got, err = repo.GetByID(ctx, bare.ID, owner.ID)
	require.NoError(t, err)
	require.Nil(t, got.Description)
}

func TestItemRepositoryOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	item := domain.NewItem(alice.ID, "alice's", nil)
	require.NoError(t, repo.Create(ctx, item))

	_, err := repo.GetByID(ctx, item.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	require.ErrorIs(t, repo.Delete(ctx, item.ID, bob.ID), domain.ErrItemNotFound)

	foreign := *item
	foreign.OwnerID = bob.ID
	require.ErrorIs(t, repo.Update(ctx, &foreign), domain.ErrItemNotFound)

	// Still intact for the owner.
	got, err := repo.GetByID(ctx, item.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice's", got.Title)
}

func TestItemRepositoryListByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, domain.NewItem(alice.ID, fmt.Sprintf("item %d", i), nil)))
	}
	require.NoError(t, repo.Create(ctx, domain.NewItem(bob.ID, "bob's", nil)))

	result, err := repo.ListByOwner(ctx, alice.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), result.Total)
	require.Len(t, result.Items, 3)

	// Newest first.
	require.Equal(t, "item 2", result.Items[0].Title)
	require.Equal(t, "item 0", result.Items[2].Title)

	result, err = repo.ListByOwner(ctx, alice.ID, repository.ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
}

func TestItemRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice")

	item := domain.NewItem(owner.ID, "before", nil)
	require.NoError(t, repo.Create(ctx, item))

	now := time.Now().UTC().Truncate(time.Second)
	desc := "added later"
	item.Title = "after"
	item.Description = &desc
	item.UpdatedAt = &now
	require.NoError(t, repo.Update(ctx, item))

	got, err := repo.GetByID(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, "after", got.Title)
	require.Equal(t, desc, *got.Description)
	require.NotNil(t, got.UpdatedAt)
	require.True(t, got.UpdatedAt.Equal(now))
}

func TestItemsDeletedWithOwner(t *testing.T) {
	db := newTestDB(t)
	items := NewItemRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice")

	item := domain.NewItem(owner.ID, "doomed", nil)
	require.NoError(t, items.Create(ctx, item))

	require.NoError(t, users.Delete(ctx, owner.ID))

	_, err := items.GetByID(ctx, item.ID, owner.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}
