package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/repository"
)

// itemRepository implements repository.ItemRepository for SQLite.
type itemRepository struct {
	db *DB
}

// NewItemRepository creates a new SQLite item repository.
func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item.
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (owner_id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		item.OwnerID,
		item.Title,
		nullString(item.Description),
		item.CreatedAt.Format(time.RFC3339),
		nullTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	item.ID = id

	return nil
}

const itemColumns = `id, owner_id, title, description, created_at, updated_at`

// GetByID retrieves an item by ID, scoped to the given owner. An item owned
// by another user is indistinguishable from a nonexistent one.
func (r *itemRepository) GetByID(ctx context.Context, id, ownerID int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND owner_id = ?`
	return r.scanItem(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *itemRepository) scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var description sql.NullString
	var createdAt string
	var updatedAt sql.NullString

	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&description,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if description.Valid {
		item.Description = &description.String
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if updatedAt.Valid {
		t, _ := time.Parse(time.RFC3339, updatedAt.String)
		item.UpdatedAt = &t
	}

	return item, nil
}

// ListByOwner returns the owner's items with pagination, newest first.
func (r *itemRepository) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) (*repository.ListResult[domain.Item], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, opts.Limit, opts.Offset)
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
		SET title = ?, description = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title,
		nullString(item.Description),
		nullTime(item.UpdatedAt),
		item.ID,
		item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// Delete deletes an item by ID, scoped to the given owner.
func (r *itemRepository) Delete(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// nullString converts an optional string into a driver-friendly value.
func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullTime converts an optional time into an RFC3339 string or NULL.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

// Ensure itemRepository implements repository.ItemRepository.
var _ repository.ItemRepository = (*itemRepository)(nil)
