package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localmart/shopdata/internal/catalog"
	"github.com/localmart/shopdata/internal/config"
	"github.com/localmart/shopdata/internal/database"
	"github.com/localmart/shopdata/internal/gateway"
	"github.com/localmart/shopdata/internal/handlers"
	"github.com/localmart/shopdata/internal/middleware"
	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/store"
	"github.com/localmart/shopdata/internal/types"
)

// @title ShopData API
// @version 1.0.0
// @description Scoped multi-collection shopping persistence service
// @termsOfService http://swagger.io/terms/

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name shop_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire the collections over one record store
	recordStore := store.New(db)
	cart := services.NewCart(recordStore)
	favorites := services.NewFavorites(recordStore, cart)
	history := services.NewHistory(recordStore)
	paymentGateway := gateway.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayTimeout)
	checkout := services.NewCheckout(db, cart, history, paymentGateway)
	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("shopdata")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}
	app.Get("/health", healthHandler.GetHealth)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	// Catalog proxy (public)
	productsHandler := &handlers.ProductsHandler{Catalog: catalogClient}
	api.Get("/products", productsHandler.GetProducts)
	api.Get("/products/:itemId", productsHandler.GetProduct)

	// Collection routes; every record is scoped to the resolved user
	data := api.Group("/data", middleware.AuthUser(cfg))

	cartHandler := &handlers.CartHandler{Cart: cart, Catalog: catalogClient}
	data.Get("/cart", cartHandler.GetCartItems)
	data.Get("/cart/total", cartHandler.GetCartTotal)
	data.Post("/cart/:itemId", cartHandler.AddCartItem)
	data.Delete("/cart/:itemId", cartHandler.DeleteCartItem)

	favoritesHandler := &handlers.FavoritesHandler{Favorites: favorites, Catalog: catalogClient}
	data.Get("/favorites", favoritesHandler.GetFavorites)
	data.Post("/favorites/cart", favoritesHandler.AddFavoritesToCart)
	data.Post("/favorites/:itemId", favoritesHandler.AddFavorite)
	data.Delete("/favorites/:itemId", favoritesHandler.DeleteFavorite)

	historyHandler := &handlers.HistoryHandler{History: history}
	data.Get("/history", historyHandler.GetHistory)

	// Checkout routes
	checkoutHandler := &handlers.CheckoutHandler{Checkout: checkout}
	co := api.Group("/checkout", middleware.AuthUser(cfg))
	co.Post("/", checkoutHandler.BeginCheckout)
	co.Get("/:intentId", checkoutHandler.GetCheckoutIntent)
	co.Post("/:intentId/confirm", checkoutHandler.ConfirmCheckout)
	co.Post("/:intentId/cancel", checkoutHandler.CancelCheckout)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Typed errors from middleware carry their own code
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
