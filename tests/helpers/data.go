// data.go

package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/localmart/shopdata/internal/gateway"
	"github.com/localmart/shopdata/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory SQLite database with the full schema migrated
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Every pooled connection to :memory: is its own database, so pin the
	// pool to one connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.ItemRecord{}, &models.CheckoutIntent{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// TestProduct builds a catalog product with a deterministic price derived
// from the id so totals are easy to assert on.
func TestProduct(id int64) models.Product {
	return models.Product{
		ID:          id,
		Title:       "Product " + strconv.FormatInt(id, 10),
		Price:       decimal.NewFromInt(id).Mul(decimal.NewFromFloat(9.99)).Round(2),
		Description: "Test product",
		Category:    "test",
		Image:       "https://example.test/img.png",
		Rating:      models.Rating{Rate: 4.5, Count: 120},
	}
}

// SeedRecord inserts an item record directly, bypassing the services
func SeedRecord(t *testing.T, db *gorm.DB, collection, userID string, itemID int64, quantity int64) models.ItemRecord {
	t.Helper()

	rec := TestProduct(itemID).Record(userID)
	rec.Collection = collection
	rec.Quantity = quantity
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("Failed to seed %s record: %v", collection, err)
	}
	return rec
}

// NewCatalogStub serves the given products the way the remote catalog does:
// the list at /products and single products at /products/:id, 404 otherwise.
// The caller owns the returned server.
func NewCatalogStub(t *testing.T, products []models.Product) *httptest.Server {
	t.Helper()

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/products" {
			json.NewEncoder(w).Encode(products)
			return
		}

		idPart := strings.TrimPrefix(r.URL.Path, "/products/")
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err == nil {
			if p, ok := byID[id]; ok {
				json.NewEncoder(w).Encode(p)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

// NewGatewayStub serves a payment service that always answers with the given
// verdict and records every submitted intent. The caller owns the server.
func NewGatewayStub(t *testing.T, result gateway.Result) (*httptest.Server, *[]gateway.Intent) {
	t.Helper()

	submitted := &[]gateway.Intent{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment_intents" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var intent gateway.Intent
		if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*submitted = append(*submitted, intent)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}))
	return server, submitted
}
