package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/catalog"
	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/types"
	"github.com/localmart/shopdata/internal/utils"
)

// Cart write modes. "set" overwrites the line quantity, "increment" adds to
// it. Callers must state their intent; there is no ambiguous default merge.
const (
	ModeSet       = "set"
	ModeIncrement = "increment"
)

// CartHandler handles cart data routes
type CartHandler struct {
	Cart    *services.Cart
	Catalog *catalog.Client
}

type cartWriteBody struct {
	Quantity int64  `json:"quantity"`
	Mode     string `json:"mode"`
}

// GetCartItems handles GET /api/data/cart
// @Summary Get cart items
// @Description Get all cart line items for the current user
// @Tags Cart
// @Produce json
// @Success 200 {array} models.ItemRecord
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/cart [get]
func (h *CartHandler) GetCartItems(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	items, err := h.Cart.Items(c.Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCartItems")
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

// GetCartTotal handles GET /api/data/cart/total
// @Summary Get cart total
// @Description Get the exact payable total for the current user's cart
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/cart/total [get]
func (h *CartHandler) GetCartTotal(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	total, err := h.Cart.TotalPayable(c.Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCartTotal")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"total": total})
}

// AddCartItem handles POST /api/data/cart/:itemId
// @Summary Add a product to the cart
// @Description Add a catalog product to the cart, overwriting or incrementing the line quantity per the requested mode
// @Tags Cart
// @Accept json
// @Produce json
// @Param itemId path int true "Catalog product ID"
// @Param body body object true "Quantity and write mode (set|increment)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/cart/{itemId} [post]
func (h *CartHandler) AddCartItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}

	body := cartWriteBody{Quantity: 1, Mode: ModeSet}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
		}
	}
	if body.Quantity <= 0 {
		return utils.ErrorResponse(c, "Quantity must be positive", fiber.StatusBadRequest, "data.validation.input")
	}

	product, err := h.Catalog.Product(c.Context(), itemID)
	if err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Product %d not available: %v", itemID, err), fiber.StatusBadGateway, "catalog")
	}

	var rec interface{}
	switch body.Mode {
	case ModeSet:
		rec, err = h.Cart.SetQuantity(c.Context(), userID, *product, body.Quantity)
	case ModeIncrement:
		rec, err = h.Cart.IncrementQuantity(c.Context(), userID, *product, body.Quantity)
	default:
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown mode %q", body.Mode), fiber.StatusBadRequest, "data.validation.input")
	}
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addCartItem")
	}

	return utils.MutationSuccessResponse(c, rec)
}

// DeleteCartItem handles DELETE /api/data/cart/:itemId
// @Summary Remove a cart line
// @Description Delete one line item from the current user's cart
// @Tags Cart
// @Produce json
// @Param itemId path int true "Catalog product ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/cart/{itemId} [delete]
func (h *CartHandler) DeleteCartItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}

	if err := h.Cart.Remove(c.Context(), userID, itemID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Item %d not in cart", itemID))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteCartItem")
	}

	return utils.MutationSuccessResponse(c, nil)
}
