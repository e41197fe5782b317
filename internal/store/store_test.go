package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/store"
	"github.com/localmart/shopdata/internal/types"
	"github.com/localmart/shopdata/tests/helpers"
)

func newStore(t *testing.T) *store.Store {
	return store.New(helpers.NewTestDB(t))
}

func cartRecord(userID string, itemID, quantity int64) models.ItemRecord {
	rec := helpers.TestProduct(itemID).Record(userID)
	rec.Quantity = quantity
	return rec
}

func overwriteQuantity(existing, incoming *models.ItemRecord) {
	existing.Quantity = incoming.Quantity
}

func addQuantity(existing, incoming *models.ItemRecord) {
	existing.Quantity += incoming.Quantity
}

// TestUpsertInsert verifies a first write creates the row
func TestUpsertInsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stored, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 2), overwriteQuantity)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if stored.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", stored.Quantity)
	}

	records, err := s.FetchAll(ctx, models.CollectionCart, "alice")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
}

// TestUpsertMerge verifies a repeat write reconciles instead of duplicating
func TestUpsertMerge(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 2), overwriteQuantity); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	stored, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 5), overwriteQuantity)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if stored.Quantity != 5 {
		t.Errorf("Expected overwritten quantity 5, got %d", stored.Quantity)
	}

	records, err := s.FetchAll(ctx, models.CollectionCart, "alice")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected a single row after merge, got %d", len(records))
	}
}

// TestUpsertCollectionsIndependent verifies the same item can live in
// multiple collections without interference
func TestUpsertCollectionsIndependent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 3), overwriteQuantity); err != nil {
		t.Fatalf("Cart upsert failed: %v", err)
	}
	if _, err := s.Upsert(ctx, models.CollectionFavorites, cartRecord("alice", 1, 0), overwriteQuantity); err != nil {
		t.Fatalf("Favorites upsert failed: %v", err)
	}

	cart, _ := s.FetchAll(ctx, models.CollectionCart, "alice")
	favorites, _ := s.FetchAll(ctx, models.CollectionFavorites, "alice")
	if len(cart) != 1 || len(favorites) != 1 {
		t.Errorf("Expected 1 row per collection, got cart=%d favorites=%d", len(cart), len(favorites))
	}
	if cart[0].Quantity != 3 {
		t.Errorf("Cart quantity changed by favorites write: %d", cart[0].Quantity)
	}
}

// TestFetchAllEmpty verifies an empty collection yields an empty slice
func TestFetchAllEmpty(t *testing.T) {
	s := newStore(t)

	records, err := s.FetchAll(context.Background(), models.CollectionHistory, "alice")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty slice, got %d records", len(records))
	}
}

// TestFetchAllUserScoped verifies one user never sees another user's rows
func TestFetchAllUserScoped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 1), overwriteQuantity); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("bob", 2, 1), overwriteQuantity); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	records, err := s.FetchAll(ctx, models.CollectionCart, "alice")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 1 || records[0].ItemID != 1 {
		t.Errorf("Expected only alice's record, got %+v", records)
	}
}

// TestFetchNotFound verifies a missing record yields ErrNotFound
func TestFetchNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Fetch(context.Background(), models.CollectionCart, "alice", 42)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestExists verifies membership checks per collection and user
func TestExists(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, models.CollectionFavorites, cartRecord("alice", 7, 0), overwriteQuantity); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if !s.Exists(ctx, models.CollectionFavorites, "alice", 7) {
		t.Error("Expected item 7 to exist in alice's favorites")
	}
	if s.Exists(ctx, models.CollectionFavorites, "bob", 7) {
		t.Error("Expected item 7 to be absent from bob's favorites")
	}
	if s.Exists(ctx, models.CollectionCart, "alice", 7) {
		t.Error("Expected item 7 to be absent from alice's cart")
	}
}

// TestDelete verifies exact-row removal and ErrNotFound on misses
func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", 1, 1), overwriteQuantity); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("bob", 1, 1), overwriteQuantity); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := s.Delete(ctx, models.CollectionCart, "alice", 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, models.CollectionCart, "alice", 1); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}

	// bob's identical item is untouched
	if !s.Exists(ctx, models.CollectionCart, "bob", 1) {
		t.Error("Expected bob's record to survive alice's delete")
	}
}

// TestClear verifies full-collection removal returns the row count
func TestClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for itemID := int64(1); itemID <= 3; itemID++ {
		if _, err := s.Upsert(ctx, models.CollectionCart, cartRecord("alice", itemID, 1), overwriteQuantity); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	removed, err := s.Clear(ctx, models.CollectionCart, "alice")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 rows removed, got %d", removed)
	}

	removed, err = s.Clear(ctx, models.CollectionCart, "alice")
	if err != nil {
		t.Fatalf("Clear of empty collection failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 rows removed from empty collection, got %d", removed)
	}
}

// TestConcurrentUpserts verifies merges never lose an update under
// concurrent writers to the same record key
func TestConcurrentUpserts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Upsert(ctx, models.CollectionHistory, cartRecord("alice", 1, 1), addQuantity); err != nil {
				t.Errorf("Upsert failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := s.Fetch(ctx, models.CollectionHistory, "alice", 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if rec.Quantity != writers {
		t.Errorf("Expected accumulated quantity %d, got %d", writers, rec.Quantity)
	}
}
