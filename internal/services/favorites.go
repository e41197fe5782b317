package services

import (
	"context"

	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/store"
)

// Favorites manages the user's favorite product snapshots. A favorite is
// created once and never mutated; favoriting a product twice collapses to
// the existing row because upsert is the only write path. Favorites never
// carry a quantity.
type Favorites struct {
	store *store.Store
	cart  *Cart
}

// NewFavorites creates the favorites collection over a record store. The
// cart is needed for the bulk add-favorites-to-cart flow.
func NewFavorites(s *store.Store, cart *Cart) *Favorites {
	return &Favorites{store: s, cart: cart}
}

// Add stores the product as a favorite. Adding an existing favorite is a
// no-op that keeps the original row.
func (f *Favorites) Add(ctx context.Context, userID string, product models.Product) (*models.ItemRecord, error) {
	rec := product.Record(userID)
	rec.Quantity = 0

	return f.store.Upsert(ctx, models.CollectionFavorites, rec, func(existing, incoming *models.ItemRecord) {
		// Keep the first snapshot. Favorites are immutable.
	})
}

// Remove deletes the favorite. types.ErrNotFound when the product was not
// favorited.
func (f *Favorites) Remove(ctx context.Context, userID string, itemID int64) error {
	return f.store.Delete(ctx, models.CollectionFavorites, userID, itemID)
}

// Items returns the user's favorites in stable order.
func (f *Favorites) Items(ctx context.Context, userID string) ([]models.ItemRecord, error) {
	return f.store.FetchAll(ctx, models.CollectionFavorites, userID)
}

// IsFavorite reports whether the product is favorited. Fails closed on
// storage errors.
func (f *Favorites) IsFavorite(ctx context.Context, userID string, itemID int64) bool {
	return f.store.Exists(ctx, models.CollectionFavorites, userID, itemID)
}

// AddAllToCart moves every favorite into the cart, one independent increment
// per product, accumulating onto any existing cart line. Per-item failures
// are collected so one bad line does not abandon the rest; the first error
// is returned after the sweep along with the number of lines added.
func (f *Favorites) AddAllToCart(ctx context.Context, userID string, quantityPerItem int64) (int, error) {
	items, err := f.Items(ctx, userID)
	if err != nil {
		return 0, err
	}

	var firstErr error
	added := 0
	for _, item := range items {
		product := models.Product{
			ID:          item.ItemID,
			Title:       item.Title,
			Price:       item.Price,
			Description: item.Description,
			Category:    item.Category,
			Image:       item.ImageURL,
			Rating:      models.Rating{Rate: item.RatingRate, Count: item.RatingCount},
		}
		if _, err := f.cart.IncrementQuantity(ctx, userID, product, quantityPerItem); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		added++
	}
	return added, firstErr
}
