package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection names. Every item record belongs to exactly one of these
// partitions.
const (
	CollectionCart      = "cart"
	CollectionFavorites = "favorites"
	CollectionHistory   = "history"
)

// ItemRecord is a stored product row within one collection for one user.
// (collection, user_id, item_id) is unique: a product appears at most once
// per user per collection, and repeat writes are upserts.
//
// UserID is the owning user's id; the empty string is the legacy
// single-user mode where no one is signed in.
type ItemRecord struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"-"`
	Collection  string          `gorm:"size:32;not null;index:idx_collection_user_item,unique" json:"-"`
	UserID      string          `gorm:"size:255;not null;default:'';index:idx_collection_user_item,unique" json:"userId"`
	ItemID      int64           `gorm:"not null;index:idx_collection_user_item,unique" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:255" json:"category"`
	ImageURL    string          `gorm:"size:1024" json:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	RatingRate  float64         `gorm:"not null;default:0" json:"rate"`
	RatingCount int64           `gorm:"not null;default:0" json:"count"`
	Quantity    int64           `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// TableName overrides the table name for ItemRecord
func (ItemRecord) TableName() string {
	return "item_records"
}

// LineTotal is price multiplied by quantity, exact.
func (r ItemRecord) LineTotal() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Quantity))
}
