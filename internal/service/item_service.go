package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/repository"
)

// ItemService handles ownership-scoped item operations. Every operation
// takes the acting user's ID and never touches items of other owners; an
// item owned by someone else is reported as not found.
type ItemService struct {
	itemRepo repository.ItemRepository
	logger   zerolog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(itemRepo repository.ItemRepository, logger zerolog.Logger) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		logger:   logger.With().Str("service", "item").Logger(),
	}
}

// CreateItemInput contains the data needed to create an item.
type CreateItemInput struct {
	OwnerID     int64
	Title       string
	Description *string
}

// Create creates a new item owned by the given user.
func (s *ItemService) Create(ctx context.Context, input CreateItemInput) (*domain.Item, error) {
	if err := validateItemFields(input.Title, input.Description); err != nil {
		return nil, err
	}

	item := domain.NewItem(input.OwnerID, input.Title, input.Description)

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to create item")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("item_id", item.ID).
		Int64("owner_id", item.OwnerID).
		Msg("item created")

	return item, nil
}

// ListItemsInput contains pagination options for listing items.
type ListItemsInput struct {
	Limit  int
	Offset int
}

// List returns the owner's items with pagination, newest first.
func (s *ItemService) List(ctx context.Context, ownerID int64, input ListItemsInput) (*repository.ListResult[domain.Item], error) {
	if input.Limit <= 0 {
		input.Limit = 100
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	result, err := s.itemRepo.ListByOwner(ctx, ownerID, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list items")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return result, nil
}

// Get retrieves a single item, scoped to the owner.
func (s *ItemService) Get(ctx context.Context, id, ownerID int64) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to get item")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return item, nil
}

// Update applies a partial patch to an item, scoped to the owner. Fields
// absent from the patch are left unchanged. An empty patch is a no-op that
// returns the item as stored.
func (s *ItemService) Update(ctx context.Context, id, ownerID int64, patch domain.ItemPatch) (*domain.Item, error) {
	if patch.Title != nil && (len(*patch.Title) < 1 || len(*patch.Title) > 200) {
		return nil, ErrInvalidTitle
	}
	if patch.Description != nil && len(*patch.Description) > 1000 {
		return nil, ErrInvalidDescription
	}

	item, err := s.itemRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to get item for update")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if patch.IsEmpty() {
		return item, nil
	}

	patch.Apply(item)

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to update item")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("item_id", item.ID).
		Int64("owner_id", item.OwnerID).
		Msg("item updated")

	return item, nil
}

// Delete deletes an item, scoped to the owner.
func (s *ItemService) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.itemRepo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to delete item")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("item_id", id).
		Int64("owner_id", ownerID).
		Msg("item deleted")

	return nil
}

// validateItemFields validates title and description constraints.
func validateItemFields(title string, description *string) error {
	if len(title) < 1 || len(title) > 200 {
		return ErrInvalidTitle
	}
	if description != nil && len(*description) > 1000 {
		return ErrInvalidDescription
	}
	return nil
}
