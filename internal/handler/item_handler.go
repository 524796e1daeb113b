package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/auth"
	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/service"
)

// ItemHandler handles the ownership-scoped item CRUD endpoints. All routes
// are registered behind the auth middleware, so every request carries a
// resolved user in its context.
type ItemHandler struct {
	items  *service.ItemService
	logger zerolog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *service.ItemService, logger zerolog.Logger) *ItemHandler {
	return &ItemHandler{
		items:  items,
		logger: logger.With().Str("handler", "item").Logger(),
	}
}

// RegisterRoutes registers the item endpoints.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/items", h.handleCreate)
	r.Get("/items", h.handleList)
	r.Get("/items/{id}", h.handleGet)
	r.Put("/items/{id}", h.handleUpdate)
	r.Delete("/items/{id}", h.handleDelete)
}

// currentUser returns the user resolved by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}
	return user, true
}

// itemID parses the {id} route parameter.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "item not found")
		return 0, false
	}
	return id, true
}

func (h *ItemHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.items.Create(r.Context(), service.CreateItemInput{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.items.List(r.Context(), user.ID, service.ListItemsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []*domain.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.items.Get(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.items.Update(r.Context(), id, user.ID, domain.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(r.Context(), id, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
