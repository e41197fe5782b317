package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// MergeFunc reconciles an incoming record into an existing row during an
// upsert. The collection wrappers decide the policy: cart overwrite vs.
// accumulate, history accumulate, favorites keep-first.
type MergeFunc func(existing *models.ItemRecord, incoming *models.ItemRecord)

// Store is the scoped record store shared by the cart, favorites and history
// collections. Rows are partitioned by collection name and owned by a user
// id; (collection, userID, itemID) is unique.
//
// Each mutation is serialized per record key with an in-process lock on top
// of the database transaction, so two concurrent merges for the same product
// cannot lose an update even on backends where row locking is a no-op.
type Store struct {
	db    *gorm.DB
	locks *keyLocks
}

// New creates a Store over an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		locks: newKeyLocks(),
	}
}

// DB exposes the underlying connection for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func recordKey(collection, userID string, itemID int64) string {
	return fmt.Sprintf("%s/%s/%d", collection, userID, itemID)
}

// Upsert inserts the record, or reconciles it into the existing row for the
// same (collection, userID, itemID) via merge. The whole cycle is atomic:
// no partial write is observable. Returns the stored row.
func (s *Store) Upsert(ctx context.Context, collection string, rec models.ItemRecord, merge MergeFunc) (*models.ItemRecord, error) {
	rec.Collection = collection

	release := s.locks.acquire(recordKey(collection, rec.UserID, rec.ItemID))
	defer release()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ItemRecord
		q := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("collection = ? AND user_id = ? AND item_id = ?", collection, rec.UserID, rec.ItemID)
		if supportsRowLocking(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		if err := q.First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("%w: %v", types.ErrWriteFailed, err)
				}
				return nil
			}
			return fmt.Errorf("%w: %v", types.ErrReadFailed, err)
		}

		merge(&existing, &rec)
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("%w: %v", types.ErrWriteFailed, err)
		}
		rec = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FetchAll returns every record the user owns in the collection, in a stable
// insertion order for list rendering. An empty collection is an empty slice,
// not an error.
func (s *Store) FetchAll(ctx context.Context, collection, userID string) ([]models.ItemRecord, error) {
	var records []models.ItemRecord

	q := s.db.WithContext(ctx).
		Where("collection = ? AND user_id = ?", collection, userID).
		Order("created_at, item_id")
	if s.db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_collection_user_item"))
	}

	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrReadFailed, err)
	}
	return records, nil
}

// Fetch returns the record for (collection, userID, itemID), or
// types.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, collection, userID string, itemID int64) (*models.ItemRecord, error) {
	var rec models.ItemRecord
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)}).
		Where("collection = ? AND user_id = ? AND item_id = ?", collection, userID, itemID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", types.ErrReadFailed, err)
	}
	return &rec, nil
}

// Exists reports whether the user has a record for the item. A storage
// failure fails closed: it is logged and reported as false so callers treat
// the item as absent.
func (s *Store) Exists(ctx context.Context, collection, userID string, itemID int64) bool {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ItemRecord{}).
		Where("collection = ? AND user_id = ? AND item_id = ?", collection, userID, itemID).
		Count(&count).Error
	if err != nil {
		log.Printf("exists check failed for %s: %v", recordKey(collection, userID, itemID), err)
		return false
	}
	return count > 0
}

// Delete removes exactly the row matching (collection, userID, itemID).
// types.ErrNotFound when there is no such row; other users' rows are never
// touched.
func (s *Store) Delete(ctx context.Context, collection, userID string, itemID int64) error {
	release := s.locks.acquire(recordKey(collection, userID, itemID))
	defer release()

	result := s.db.WithContext(ctx).
		Where("collection = ? AND user_id = ? AND item_id = ?", collection, userID, itemID).
		Delete(&models.ItemRecord{})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Clear removes all of the user's records in the collection and returns the
// number removed. An already-empty collection is not an error.
func (s *Store) Clear(ctx context.Context, collection, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND user_id = ?", collection, userID).
		Delete(&models.ItemRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrWriteFailed, result.Error)
	}
	return result.RowsAffected, nil
}

// supportsRowLocking reports whether the dialect honors SELECT ... FOR
// UPDATE. SQLite rejects the clause; its writers are serialized by the
// per-key lock and the transaction instead.
func supportsRowLocking(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}
