// handlers_test.go

package unit

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/catalog"
	"github.com/localmart/shopdata/internal/handlers"
	"github.com/localmart/shopdata/internal/models"
	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/store"
	"github.com/localmart/shopdata/tests/helpers"
	"gorm.io/gorm"
)

// testApp wires the data routes over an in-memory database and a stubbed
// catalog, with the auth middleware replaced by a fixed user id.
func testApp(t *testing.T, userID string, products []models.Product) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := helpers.NewTestDB(t)
	s := store.New(db)
	cart := services.NewCart(s)
	favorites := services.NewFavorites(s, cart)
	history := services.NewHistory(s)

	catalogStub := helpers.NewCatalogStub(t, products)
	t.Cleanup(catalogStub.Close)
	catalogClient := catalog.NewClient(catalogStub.URL, 5*time.Second)

	cartHandler := &handlers.CartHandler{Cart: cart, Catalog: catalogClient}
	favoritesHandler := &handlers.FavoritesHandler{Favorites: favorites, Catalog: catalogClient}
	historyHandler := &handlers.HistoryHandler{History: history}
	productsHandler := &handlers.ProductsHandler{Catalog: catalogClient}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})

	app.Get("/api/products", productsHandler.GetProducts)
	app.Get("/api/products/:itemId", productsHandler.GetProduct)

	data := app.Group("/api/data")
	data.Get("/cart", cartHandler.GetCartItems)
	data.Get("/cart/total", cartHandler.GetCartTotal)
	data.Post("/cart/:itemId", cartHandler.AddCartItem)
	data.Delete("/cart/:itemId", cartHandler.DeleteCartItem)
	data.Get("/favorites", favoritesHandler.GetFavorites)
	data.Post("/favorites/cart", favoritesHandler.AddFavoritesToCart)
	data.Post("/favorites/:itemId", favoritesHandler.AddFavorite)
	data.Delete("/favorites/:itemId", favoritesHandler.DeleteFavorite)
	data.Get("/history", historyHandler.GetHistory)

	return app, db
}

// TestGetCartEmpty tests GET /api/data/cart on a fresh database
func TestGetCartEmpty(t *testing.T) {
	app, _ := testApp(t, "alice", nil)

	req := httptest.NewRequest("GET", "/api/data/cart", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}

// TestAddCartItem tests POST /api/data/cart/:itemId with set and increment
func TestAddCartItem(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1)})

	body, _ := json.Marshal(map[string]interface{}{"quantity": 2, "mode": "set"})
	req := httptest.NewRequest("POST", "/api/data/cart/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["ok"] != true {
		t.Errorf("Expected ok response, got %v", result)
	}

	body, _ = json.Marshal(map[string]interface{}{"quantity": 3, "mode": "increment"})
	req = httptest.NewRequest("POST", "/api/data/cart/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/data/cart", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 1 {
		t.Fatalf("Expected 1 cart line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("Expected quantity 5 after set 2 + increment 3, got %d", items[0].Quantity)
	}
}

// TestAddCartItemDefaults tests that an empty body means quantity 1, set
func TestAddCartItemDefaults(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1)})

	req := httptest.NewRequest("POST", "/api/data/cart/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/data/cart", nil)
	resp, _ = app.Test(req)
	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Errorf("Expected a single line with quantity 1, got %+v", items)
	}
}

// TestAddCartItemValidation tests bad quantities, modes and ids
func TestAddCartItemValidation(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1)})

	cases := []struct {
		name string
		url  string
		body map[string]interface{}
	}{
		{"zero quantity", "/api/data/cart/1", map[string]interface{}{"quantity": 0}},
		{"negative quantity", "/api/data/cart/1", map[string]interface{}{"quantity": -2}},
		{"unknown mode", "/api/data/cart/1", map[string]interface{}{"quantity": 1, "mode": "replace"}},
		{"bad item id", "/api/data/cart/abc", map[string]interface{}{"quantity": 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", tc.url, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			helpers.AssertStatus(t, resp, 400)
		})
	}
}

// TestAddCartItemUnknownProduct tests a product the catalog does not have
func TestAddCartItemUnknownProduct(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1)})

	req := httptest.NewRequest("POST", "/api/data/cart/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 502)
}

// TestGetCartTotal tests GET /api/data/cart/total
func TestGetCartTotal(t *testing.T) {
	app, db := testApp(t, "alice", nil)

	helpers.SeedRecord(t, db, models.CollectionCart, "alice", 1, 2)
	helpers.SeedRecord(t, db, models.CollectionCart, "alice", 2, 1)

	req := httptest.NewRequest("GET", "/api/data/cart/total", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]string
	helpers.ParseJSON(t, resp, &result)
	// price(1)=9.99 x2 + price(2)=19.98 x1
	if result["total"] != "39.96" {
		t.Errorf("Expected total 39.96, got %q", result["total"])
	}
}

// TestDeleteCartItem tests DELETE /api/data/cart/:itemId
func TestDeleteCartItem(t *testing.T) {
	app, db := testApp(t, "alice", nil)
	helpers.SeedRecord(t, db, models.CollectionCart, "alice", 1, 2)

	req := httptest.NewRequest("DELETE", "/api/data/cart/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Deleting again is a 404
	req = httptest.NewRequest("DELETE", "/api/data/cart/1", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestFavoritesRoutes tests the favorite/unfavorite round trip
func TestFavoritesRoutes(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1)})

	req := httptest.NewRequest("POST", "/api/data/favorites/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Favoriting twice stays a single row
	req = httptest.NewRequest("POST", "/api/data/favorites/1", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/data/favorites", nil)
	resp, _ = app.Test(req)
	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 1 {
		t.Fatalf("Expected 1 favorite, got %d", len(items))
	}

	req = httptest.NewRequest("DELETE", "/api/data/favorites/1", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("DELETE", "/api/data/favorites/1", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestAddFavoritesToCart tests POST /api/data/favorites/cart
func TestAddFavoritesToCart(t *testing.T) {
	app, db := testApp(t, "alice", nil)

	helpers.SeedRecord(t, db, models.CollectionFavorites, "alice", 1, 0)
	helpers.SeedRecord(t, db, models.CollectionFavorites, "alice", 2, 0)

	req := httptest.NewRequest("POST", "/api/data/favorites/cart", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	data, _ := result["data"].(map[string]interface{})
	if data["added"] != float64(2) {
		t.Errorf("Expected 2 lines added, got %v", result)
	}

	req = httptest.NewRequest("GET", "/api/data/cart", nil)
	resp, _ = app.Test(req)
	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 2 {
		t.Errorf("Expected 2 cart lines, got %d", len(items))
	}
}

// TestGetHistory tests GET /api/data/history
func TestGetHistory(t *testing.T) {
	app, db := testApp(t, "alice", nil)

	helpers.SeedRecord(t, db, models.CollectionHistory, "alice", 1, 5)
	helpers.SeedRecord(t, db, models.CollectionHistory, "bob", 2, 1)

	req := httptest.NewRequest("GET", "/api/data/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var items []models.ItemRecord
	helpers.ParseJSON(t, resp, &items)
	if len(items) != 1 {
		t.Fatalf("Expected 1 history row for alice, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("Expected lifetime quantity 5, got %d", items[0].Quantity)
	}
}

// TestGetProducts tests the catalog proxy routes
func TestGetProducts(t *testing.T) {
	app, _ := testApp(t, "alice", []models.Product{helpers.TestProduct(1), helpers.TestProduct(2)})

	req := httptest.NewRequest("GET", "/api/products", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var products []models.Product
	helpers.ParseJSON(t, resp, &products)
	if len(products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(products))
	}

	req = httptest.NewRequest("GET", "/api/products/2", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var product models.Product
	helpers.ParseJSON(t, resp, &product)
	if product.ID != 2 {
		t.Errorf("Expected product 2, got %d", product.ID)
	}
}
