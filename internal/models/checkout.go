package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Checkout intent statuses. pending and submitting are transient; the rest
// are terminal and never transition again.
const (
	IntentPending    = "pending"
	IntentSubmitting = "submitting"
	IntentSucceeded  = "succeeded"
	IntentCanceled   = "canceled"
	IntentFailed     = "failed"
)

// CheckoutIntent records one checkout attempt. The snapshot holds the cart
// lines captured when the attempt began; the charged amount and the history
// migration both come from the snapshot, never from the live cart, so a cart
// mutated mid-checkout cannot change what the user was shown.
//
// The row doubles as the idempotency gate: the history migration runs at
// most once per intent.
type CheckoutIntent struct {
	IntentID  string          `gorm:"size:36;primaryKey" json:"intentId"`
	UserID    string          `gorm:"size:255;not null;default:'';index" json:"userId"`
	Status    string          `gorm:"size:16;not null" json:"status"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Snapshot  datatypes.JSON  `gorm:"type:json" json:"-"`
	Reason    string          `gorm:"size:1024" json:"reason,omitempty"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// TableName overrides the table name for CheckoutIntent
func (CheckoutIntent) TableName() string {
	return "checkout_intents"
}

// Terminal reports whether the intent can no longer transition.
func (i CheckoutIntent) Terminal() bool {
	switch i.Status {
	case IntentSucceeded, IntentCanceled, IntentFailed:
		return true
	}
	return false
}
