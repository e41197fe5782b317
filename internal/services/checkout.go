package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/localmart/shopdata/internal/gateway"
	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Checkout reconciles one payment attempt across the cart and history
// collections. Each attempt is a CheckoutIntent row moving through
// pending -> submitting -> succeeded | canceled | failed; terminal intents
// never transition again, so the history migration runs at most once per
// successful payment.
//
// The cart snapshot and total are captured at Begin and are authoritative:
// the amount charged and the lines migrated to history come from the
// snapshot, never from the live cart.
type Checkout struct {
	db      *gorm.DB
	cart    *Cart
	history *History
	gateway gateway.Gateway
}

// NewCheckout creates the checkout reconciler. It is the only component
// that touches two collections in one logical operation.
func NewCheckout(db *gorm.DB, cart *Cart, history *History, gw gateway.Gateway) *Checkout {
	return &Checkout{db: db, cart: cart, history: history, gateway: gw}
}

// Begin captures the user's cart snapshot and total and persists a pending
// intent. types.ErrEmptyCart when there is nothing to pay for.
func (c *Checkout) Begin(ctx context.Context, userID string) (*models.CheckoutIntent, error) {
	items, err := c.cart.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, types.ErrEmptyCart
	}

	snapshot, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot: %w", err)
	}

	intent := models.CheckoutIntent{
		IntentID: uuid.New().String(),
		UserID:   userID,
		Status:   models.IntentPending,
		Total:    SumLines(items),
		Snapshot: snapshot,
	}
	if err := c.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrWriteFailed, err)
	}
	return &intent, nil
}

// Confirm submits the intent's payment and, on success, migrates every
// snapshot line into history and clears the cart. Confirming an intent that
// already left the pending state returns types.ErrIntentConsumed.
//
// Payment failures are surfaced verbatim as *types.PaymentError. A failure
// or cancellation leaves the cart untouched so the user can retry with a
// fresh intent.
func (c *Checkout) Confirm(ctx context.Context, userID, intentID string) (*models.CheckoutIntent, error) {
	intent, err := c.intent(ctx, userID, intentID)
	if err != nil {
		return nil, err
	}

	// Only one confirmation can win the pending -> submitting transition.
	claimed, err := c.transition(ctx, intentID, models.IntentPending, models.IntentSubmitting, "")
	if err != nil {
		return nil, err
	}
	if !claimed {
		return intent, types.ErrIntentConsumed
	}
	intent.Status = models.IntentSubmitting

	result, err := c.gateway.Submit(ctx, gateway.Intent{
		IntentID: intent.IntentID,
		UserID:   intent.UserID,
		Amount:   intent.Total,
	})
	if err != nil {
		// The gateway was unreachable or answered garbage. No money moved
		// that we know of; the intent is dead but the cart stays intact.
		c.finalize(ctx, intent, models.IntentFailed, err.Error())
		return intent, &types.PaymentError{Reason: err.Error()}
	}

	switch result.Status {
	case gateway.StatusSucceeded:
		c.finalize(ctx, intent, models.IntentSucceeded, "")
		c.migrate(ctx, intent)
	case gateway.StatusCanceled:
		c.finalize(ctx, intent, models.IntentCanceled, "")
	case gateway.StatusFailed:
		c.finalize(ctx, intent, models.IntentFailed, result.Reason)
		return intent, &types.PaymentError{Reason: result.Reason}
	}
	return intent, nil
}

// Cancel abandons a pending intent before submission. The cart is left
// untouched.
func (c *Checkout) Cancel(ctx context.Context, userID, intentID string) (*models.CheckoutIntent, error) {
	intent, err := c.intent(ctx, userID, intentID)
	if err != nil {
		return nil, err
	}

	claimed, err := c.transition(ctx, intentID, models.IntentPending, models.IntentCanceled, "")
	if err != nil {
		return nil, err
	}
	if !claimed {
		return intent, types.ErrIntentConsumed
	}
	intent.Status = models.IntentCanceled
	return intent, nil
}

// Intent returns the stored intent, for status display. Intents are scoped
// to their owner like every other record.
func (c *Checkout) Intent(ctx context.Context, userID, intentID string) (*models.CheckoutIntent, error) {
	return c.intent(ctx, userID, intentID)
}

func (c *Checkout) intent(ctx context.Context, userID, intentID string) (*models.CheckoutIntent, error) {
	var intent models.CheckoutIntent
	err := c.db.WithContext(ctx).
		Session(&gorm.Session{Logger: c.db.Logger.LogMode(logger.Silent)}).
		Where("intent_id = ? AND user_id = ?", intentID, userID).
		First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", types.ErrReadFailed, err)
	}
	return &intent, nil
}

// transition performs a guarded status update and reports whether this call
// won it.
func (c *Checkout) transition(ctx context.Context, intentID, from, to, reason string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if reason != "" {
		updates["reason"] = reason
	}
	result := c.db.WithContext(ctx).
		Model(&models.CheckoutIntent{}).
		Where("intent_id = ? AND status = ?", intentID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", types.ErrWriteFailed, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// finalize records the terminal status on the intent. The payment already
// happened (or didn't); a bookkeeping write failure here is logged, not
// propagated.
func (c *Checkout) finalize(ctx context.Context, intent *models.CheckoutIntent, status, reason string) {
	if _, err := c.transition(ctx, intent.IntentID, models.IntentSubmitting, status, reason); err != nil {
		log.Printf("checkout %s: failed to record status %s: %v", intent.IntentID, status, err)
	}
	intent.Status = status
	intent.Reason = reason
}

// migrate moves the snapshot lines into history and clears the cart.
// Payment success is authoritative; per-line migration failures are logged
// and skipped, never rolled back.
func (c *Checkout) migrate(ctx context.Context, intent *models.CheckoutIntent) {
	var lines []models.ItemRecord
	if err := json.Unmarshal(intent.Snapshot, &lines); err != nil {
		log.Printf("checkout %s: failed to decode snapshot: %v", intent.IntentID, err)
		return
	}

	for _, line := range lines {
		if _, err := c.history.RecordPurchase(ctx, intent.UserID, line); err != nil {
			log.Printf("checkout %s: failed to record purchase of item %d: %v", intent.IntentID, line.ItemID, err)
		}
	}

	// No stale cart rows after a successful payment.
	if _, err := c.cart.Clear(ctx, intent.UserID); err != nil {
		log.Printf("checkout %s: failed to clear cart: %v", intent.IntentID, err)
	}
}
