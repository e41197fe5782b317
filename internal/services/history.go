package services

import (
	"context"
	"time"

	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/store"
)

// History manages purchase history. Each row is the lifetime purchased
// quantity of one product for one user: a first purchase inserts the cart
// line, repeat purchases accumulate onto it.
type History struct {
	store *store.Store
}

// NewHistory creates the history collection over a record store.
func NewHistory(s *store.Store) *History {
	return &History{store: s}
}

// RecordPurchase migrates a purchased cart line into history, adding its
// quantity to any prior purchases of the same product.
func (h *History) RecordPurchase(ctx context.Context, userID string, cartLine models.ItemRecord) (*models.ItemRecord, error) {
	rec := cartLine
	rec.ID = 0
	rec.UserID = userID
	rec.CreatedAt = time.Time{}
	rec.UpdatedAt = time.Time{}

	return h.store.Upsert(ctx, models.CollectionHistory, rec, func(existing, incoming *models.ItemRecord) {
		existing.Quantity += incoming.Quantity
	})
}

// Items returns the user's purchase history in stable order.
func (h *History) Items(ctx context.Context, userID string) ([]models.ItemRecord, error) {
	return h.store.FetchAll(ctx, models.CollectionHistory, userID)
}
