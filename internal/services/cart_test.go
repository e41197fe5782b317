package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/store"
	"github.com/localmart/shopdata/internal/types"
	"github.com/localmart/shopdata/tests/helpers"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCart(t *testing.T) (*services.Cart, *gorm.DB) {
	db := helpers.NewTestDB(t)
	return services.NewCart(store.New(db)), db
}

// TestSetQuantityOverwrites verifies repeat sets replace the line quantity
func TestSetQuantityOverwrites(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()
	product := helpers.TestProduct(1)

	if _, err := cart.SetQuantity(ctx, "alice", product, 2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	line, err := cart.SetQuantity(ctx, "alice", product, 5)
	if err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if line.Quantity != 5 {
		t.Errorf("Expected quantity 5 after overwrite, got %d", line.Quantity)
	}

	items, err := cart.Items(ctx, "alice")
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected a single cart line, got %d", len(items))
	}
}

// TestIncrementQuantityAccumulates verifies repeat increments sum
func TestIncrementQuantityAccumulates(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()
	product := helpers.TestProduct(1)

	if _, err := cart.IncrementQuantity(ctx, "alice", product, 2); err != nil {
		t.Fatalf("IncrementQuantity failed: %v", err)
	}
	line, err := cart.IncrementQuantity(ctx, "alice", product, 3)
	if err != nil {
		t.Fatalf("IncrementQuantity failed: %v", err)
	}
	if line.Quantity != 5 {
		t.Errorf("Expected quantity 5 after increment, got %d", line.Quantity)
	}
}

// TestSetThenIncrement verifies the two write modes compose: set 2, then
// increment 3 yields 5
func TestSetThenIncrement(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()
	product := helpers.TestProduct(1)

	if _, err := cart.SetQuantity(ctx, "alice", product, 2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	line, err := cart.IncrementQuantity(ctx, "alice", product, 3)
	if err != nil {
		t.Fatalf("IncrementQuantity failed: %v", err)
	}
	if line.Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", line.Quantity)
	}
}

// TestQuantityMustBePositive verifies zero and negative quantities are
// rejected by both write modes
func TestQuantityMustBePositive(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()
	product := helpers.TestProduct(1)

	for _, quantity := range []int64{0, -1} {
		if _, err := cart.SetQuantity(ctx, "alice", product, quantity); err == nil {
			t.Errorf("Expected SetQuantity to reject quantity %d", quantity)
		}
		if _, err := cart.IncrementQuantity(ctx, "alice", product, quantity); err == nil {
			t.Errorf("Expected IncrementQuantity to reject quantity %d", quantity)
		}
	}

	items, err := cart.Items(ctx, "alice")
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no cart lines after rejected writes, got %d", len(items))
	}
}

// TestTotalPayable verifies the exact decimal total over multiple lines
func TestTotalPayable(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()

	// price(1) = 9.99, price(2) = 19.98
	if _, err := cart.SetQuantity(ctx, "alice", helpers.TestProduct(1), 2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if _, err := cart.SetQuantity(ctx, "alice", helpers.TestProduct(2), 1); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	total, err := cart.TotalPayable(ctx, "alice")
	if err != nil {
		t.Fatalf("TotalPayable failed: %v", err)
	}
	expected := decimal.RequireFromString("39.96")
	if !total.Equal(expected) {
		t.Errorf("Expected total %s, got %s", expected, total)
	}
}

// TestTotalPayableEmpty verifies an empty cart totals zero
func TestTotalPayableEmpty(t *testing.T) {
	cart, _ := setupCart(t)

	total, err := cart.TotalPayable(context.Background(), "alice")
	if err != nil {
		t.Fatalf("TotalPayable failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("Expected zero total for empty cart, got %s", total)
	}
}

// TestCartRemove verifies removal and the not-found miss
func TestCartRemove(t *testing.T) {
	cart, _ := setupCart(t)
	ctx := context.Background()

	if _, err := cart.SetQuantity(ctx, "alice", helpers.TestProduct(1), 1); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if err := cart.Remove(ctx, "alice", 1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := cart.Remove(ctx, "alice", 1); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if cart.Contains(ctx, "alice", 1) {
		t.Error("Expected item to be gone from the cart")
	}
}
