package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/catalog"
	"github.com/localmart/shopdata/internal/utils"
)

// ProductsHandler proxies the remote product catalog
type ProductsHandler struct {
	Catalog *catalog.Client
}

// GetProducts handles GET /api/products
// @Summary List catalog products
// @Description Fetch the full product catalog from the remote catalog service
// @Tags Products
// @Produce json
// @Success 200 {array} models.Product
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.Catalog.Products(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadGateway, "catalog")
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

// GetProduct handles GET /api/products/:itemId
// @Summary Get a catalog product
// @Description Fetch one product from the remote catalog service
// @Tags Products
// @Produce json
// @Param itemId path int true "Catalog product ID"
// @Success 200 {object} models.Product
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /products/{itemId} [get]
func (h *ProductsHandler) GetProduct(c *fiber.Ctx) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}

	product, err := h.Catalog.Product(c.Context(), itemID)
	if err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Product %d not available: %v", itemID, err), fiber.StatusBadGateway, "catalog")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}
