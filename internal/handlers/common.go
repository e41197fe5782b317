// common.go
//
// Shared request helpers for the data handlers.

package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// getUserID extracts the user id from context (set by the auth middleware).
// The empty string is a valid id: the legacy unauthenticated mode.
func getUserID(c *fiber.Ctx) (string, error) {
	v := c.Locals("userID")
	if v == nil {
		return "", fmt.Errorf("user not found in context")
	}

	userID, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid user data format")
	}

	return userID, nil
}

// parseItemID parses the :itemId path parameter.
func parseItemID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("itemId")
	itemID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return itemID, nil
}
