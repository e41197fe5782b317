package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/services"
	"github.com/localmart/shopdata/internal/utils"
)

// HistoryHandler handles purchase history routes
type HistoryHandler struct {
	History *services.History
}

// GetHistory handles GET /api/data/history
// @Summary Get purchase history
// @Description Get the lifetime purchased quantities per product for the current user
// @Tags History
// @Produce json
// @Success 200 {array} models.ItemRecord
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /data/history [get]
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	items, err := h.History.Items(c.Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getHistory")
	}

	return c.Status(fiber.StatusOK).JSON(items)
}
