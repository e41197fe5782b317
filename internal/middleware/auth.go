package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localmart/shopdata/internal/auth"
	"github.com/localmart/shopdata/internal/config"
	"github.com/localmart/shopdata/internal/types"
)

// SessionCookie is the cookie carrying the session JWT.
const SessionCookie = "shop_session"

// AuthUser resolves the current user from the session JWT (cookie or bearer
// token) and stores the user id in the request context.
//
// When AllowGuest is set, a request without a session runs as the empty
// user id, the legacy single-user mode. An invalid or expired token is
// always rejected so a stale session cannot fall through to guest data.
func AuthUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)

		if token == "" {
			if cfg.AllowGuest {
				c.Locals("userID", "")
				return c.Next()
			}
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Session cookie \"" + SessionCookie + "\" not found",
				Type:    "data.authorization.user",
			}
		}

		claims, err := auth.ValidateToken(cfg.JWTSecret, token)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Invalid session: " + err.Error(),
				Type:    "data.authorization.user",
			}
		}

		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}

// sessionToken reads the session JWT from the cookie, falling back to an
// Authorization bearer header.
func sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
