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

// FavoritesHandler handles favorites data routes
type FavoritesHandler struct {
	Favorites *services.Favorites
	Catalog   *catalog.Client
}

// GetFavorites handles GET /api/data/favorites
// @Summary Get favorites
// @Description Get all favorite products for the current user
// @Tags Favorites
// @Produce json
// @Success 200 {array} models.ItemRecord
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/favorites [get]
func (h *FavoritesHandler) GetFavorites(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	items, err := h.Favorites.Items(c.Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getFavorites")
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

// AddFavorite handles POST /api/data/favorites/:itemId
// @Summary Favorite a product
// @Description Store a catalog product as a favorite; favoriting twice is a no-op
// @Tags Favorites
// @Produce json
// @Param itemId path int true "Catalog product ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/favorites/{itemId} [post]
func (h *FavoritesHandler) AddFavorite(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}

	product, err := h.Catalog.Product(c.Context(), itemID)
	if err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Product %d not available: %v", itemID, err), fiber.StatusBadGateway, "catalog")
	}

	rec, err := h.Favorites.Add(c.Context(), userID, *product)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addFavorite")
	}

	return utils.MutationSuccessResponse(c, rec)
}

// DeleteFavorite handles DELETE /api/data/favorites/:itemId
// @Summary Unfavorite a product
// @Description Remove one favorite for the current user
// @Tags Favorites
// @Produce json
// @Param itemId path int true "Catalog product ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/favorites/{itemId} [delete]
func (h *FavoritesHandler) DeleteFavorite(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}

	if err := h.Favorites.Remove(c.Context(), userID, itemID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Item %d not in favorites", itemID))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteFavorite")
	}

	return utils.MutationSuccessResponse(c, nil)
}

// AddFavoritesToCart handles POST /api/data/favorites/cart
// @Summary Add all favorites to the cart
// @Description Add every favorite to the cart, accumulating onto existing lines
// @Tags Favorites
// @Accept json
// @Produce json
// @Param body body object false "Quantity per item, default 1"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/favorites/cart [post]
func (h *FavoritesHandler) AddFavoritesToCart(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	body := struct {
		Quantity int64 `json:"quantity"`
	}{Quantity: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
		}
	}
	if body.Quantity <= 0 {
		return utils.ErrorResponse(c, "Quantity must be positive", fiber.StatusBadRequest, "data.validation.input")
	}

	added, err := h.Favorites.AddAllToCart(c.Context(), userID, body.Quantity)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addFavoritesToCart")
	}

	return utils.MutationSuccessResponse(c, fiber.Map{"added": added})
}
