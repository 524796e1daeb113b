package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/repository"
)

// itemRepository implements repository.ItemRepository for PostgreSQL.
type itemRepository struct {
	db *DB
}

// NewItemRepository creates a new PostgreSQL item repository.
func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item.
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (owner_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		item.OwnerID,
		item.Title,
		item.Description,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

const itemColumns = `id, owner_id, title, description, created_at, updated_at`

// GetByID retrieves an item by ID, scoped to the given owner. An item owned
// by another user is indistinguishable from a nonexistent one.
func (r *itemRepository) GetByID(ctx context.Context, id, ownerID int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND owner_id = $2`
	return r.scanItem(r.db.Pool.QueryRow(ctx, query, id, ownerID))
}

func (r *itemRepository) scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&item.Description,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListByOwner returns the owner's items with pagination, newest first.
func (r *itemRepository) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) (*repository.ListResult[domain.Item], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return &repository.ListResult[domain.Item]{
		Items:  items,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Update persists the mutable fields of an item, scoped to the owner.
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`

	result, err := r.db.Pool.Exec(ctx, query,
		item.Title,
		item.Description,
		item.UpdatedAt,
		item.ID,
		item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// Delete deletes an item by ID, scoped to the given owner.
func (r *itemRepository) Delete(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// Ensure itemRepository implements repository.ItemRepository.
var _ repository.ItemRepository = (*itemRepository)(nil)
