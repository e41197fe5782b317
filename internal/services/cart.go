package services

import (
	"context"
	"fmt"

	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/store"
	"github.com/shopspring/decimal"
)

// Cart manages the user's cart line items. A product appears at most once
// per user; repeat adds reconcile quantity. The two entry points carry
// distinct intent: SetQuantity overwrites (product detail "add to cart" with
// a chosen quantity), IncrementQuantity accumulates (bulk add from
// favorites). Callers must not conflate them.
type Cart struct {
	store *store.Store
}

// NewCart creates the cart collection over a record store.
func NewCart(s *store.Store) *Cart {
	return &Cart{store: s}
}

// SetQuantity inserts the product with the requested quantity, or overwrites
// the existing line's quantity with it. The quantity must be positive.
func (c *Cart) SetQuantity(ctx context.Context, userID string, product models.Product, quantity int64) (*models.ItemRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	rec := product.Record(userID)
	rec.Quantity = quantity

	return c.store.Upsert(ctx, models.CollectionCart, rec, func(existing, incoming *models.ItemRecord) {
		existing.Quantity = incoming.Quantity
	})
}

// IncrementQuantity inserts the product with the requested quantity, or adds
// it to the existing line's quantity. It never decreases a line.
func (c *Cart) IncrementQuantity(ctx context.Context, userID string, product models.Product, quantity int64) (*models.ItemRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	rec := product.Record(userID)
	rec.Quantity = quantity

	return c.store.Upsert(ctx, models.CollectionCart, rec, func(existing, incoming *models.ItemRecord) {
		existing.Quantity += incoming.Quantity
	})
}

// Remove deletes one line item. types.ErrNotFound when the product is not in
// the user's cart.
func (c *Cart) Remove(ctx context.Context, userID string, itemID int64) error {
	return c.store.Delete(ctx, models.CollectionCart, userID, itemID)
}

// Items returns the user's cart lines in stable order.
func (c *Cart) Items(ctx context.Context, userID string) ([]models.ItemRecord, error) {
	return c.store.FetchAll(ctx, models.CollectionCart, userID)
}

// Contains reports whether the product is already a cart line.
func (c *Cart) Contains(ctx context.Context, userID string, itemID int64) bool {
	return c.store.Exists(ctx, models.CollectionCart, userID, itemID)
}

// TotalPayable is the exact sum of price times quantity over the user's cart
// lines. An empty cart totals zero.
func (c *Cart) TotalPayable(ctx context.Context, userID string) (decimal.Decimal, error) {
	items, err := c.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumLines(items), nil
}

// Clear removes every line in the user's cart and returns how many were
// removed.
func (c *Cart) Clear(ctx context.Context, userID string) (int64, error) {
	return c.store.Clear(ctx, models.CollectionCart, userID)
}

// SumLines totals price times quantity over a set of lines.
func SumLines(items []models.ItemRecord) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
