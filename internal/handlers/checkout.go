package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/types"
	"github.com/localmart/shopdata/internal/utils"
)

// CheckoutHandler handles checkout routes
type CheckoutHandler struct {
	Checkout *services.Checkout
}

// BeginCheckout handles POST /api/checkout
// @Summary Begin a checkout
// @Description Capture the cart snapshot and total and create a pending payment intent
// @Tags Checkout
// @Produce json
// @Success 201 {object} models.CheckoutIntent
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /checkout [post]
func (h *CheckoutHandler) BeginCheckout(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	intent, err := h.Checkout.Begin(c.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrEmptyCart) {
			return utils.ErrorResponse(c, "Cart is empty", fiber.StatusBadRequest, "checkout.emptyCart")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "beginCheckout")
	}

	return c.Status(fiber.StatusCreated).JSON(intent)
}

// ConfirmCheckout handles POST /api/checkout/:intentId/confirm
// @Summary Confirm a checkout
// @Description Submit the captured payment intent; on success migrate the snapshot into history and clear the cart
// @Tags Checkout
// @Produce json
// @Param intentId path string true "Checkout intent ID"
// @Success 200 {object} models.CheckoutIntent
// @Failure 402 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /checkout/{intentId}/confirm [post]
func (h *CheckoutHandler) ConfirmCheckout(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	intent, err := h.Checkout.Confirm(c.Context(), userID, c.Params("intentId"))
	if err != nil {
		var paymentErr *types.PaymentError
		switch {
		case errors.Is(err, types.ErrNotFound):
			return utils.NotFoundResponse(c, "Checkout intent not found")
		case errors.Is(err, types.ErrIntentConsumed):
			return utils.ErrorResponse(c, "Checkout intent already consumed", fiber.StatusConflict, "checkout.consumed")
		case errors.As(err, &paymentErr):
			return utils.PaymentFailedResponse(c, paymentErr.Reason)
		default:
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "confirmCheckout")
		}
	}

	return c.Status(fiber.StatusOK).JSON(intent)
}

// CancelCheckout handles POST /api/checkout/:intentId/cancel
// @Summary Cancel a checkout
// @Description Abandon a pending payment intent, leaving the cart untouched
// @Tags Checkout
// @Produce json
// @Param intentId path string true "Checkout intent ID"
// @Success 200 {object} models.CheckoutIntent
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /checkout/{intentId}/cancel [post]
func (h *CheckoutHandler) CancelCheckout(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	intent, err := h.Checkout.Cancel(c.Context(), userID, c.Params("intentId"))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			return utils.NotFoundResponse(c, "Checkout intent not found")
		case errors.Is(err, types.ErrIntentConsumed):
			return utils.ErrorResponse(c, "Checkout intent already consumed", fiber.StatusConflict, "checkout.consumed")
		default:
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "cancelCheckout")
		}
	}

	return c.Status(fiber.StatusOK).JSON(intent)
}

// GetCheckoutIntent handles GET /api/checkout/:intentId
// @Summary Get a checkout intent
// @Description Get the current status of a checkout intent
// @Tags Checkout
// @Produce json
// @Param intentId path string true "Checkout intent ID"
// @Success 200 {object} models.CheckoutIntent
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /checkout/{intentId} [get]
func (h *CheckoutHandler) GetCheckoutIntent(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	intent, err := h.Checkout.Intent(c.Context(), userID, c.Params("intentId"))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "Checkout intent not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCheckoutIntent")
	}

	return c.Status(fiber.StatusOK).JSON(intent)
}
