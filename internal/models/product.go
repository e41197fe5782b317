package models

import "github.com/shopspring/decimal"

// Product is a catalog product as supplied by the remote catalog client.
// It is never stored as-is; collections copy its fields into their own
// ItemRecord rows.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is informational product feedback data.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int64   `json:"count"`
}

// Record copies the product's fields into an ItemRecord owned by userID.
// The collection name and quantity are left to the caller.
func (p Product) Record(userID string) ItemRecord {
	return ItemRecord{
		UserID:      userID,
		ItemID:      p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.Image,
		Price:       p.Price,
		RatingRate:  p.Rating.Rate,
		RatingCount: p.Rating.Count,
	}
}
