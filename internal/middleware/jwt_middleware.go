package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/internal/services"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

// Locals keys set by AuthRequired.
const (
	LocalUserID  = "user_id"
	LocalIsAdmin = "is_admin"
)

// AuthRequired is a Fiber middleware that redirects to the sign-in page
// unless the request carries a valid session token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFrom(c)
		if tokenString == "" {
			SetFlash(c, FlashError, "Please sign in first!")
			return c.Redirect("/signin")
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("session rejected", zap.String("path", c.Path()), zap.Error(err))
			ClearSession(c)
			SetFlash(c, FlashError, "Please sign in first!")
			return c.Redirect("/signin")
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, claims["user_id"])
		isAdmin, _ := claims["is_admin"].(bool)
		c.Locals(LocalIsAdmin, isAdmin)

		return c.Next()
	}
}

// AdminRequired rejects signed-in users without the admin flag.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Permission denied")
		}
		return c.Next()
	}
}

// CurrentUserID returns the signed-in user's ID, or "" outside AuthRequired.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// IsAdmin reports whether the signed-in user is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(LocalIsAdmin).(bool)
	return isAdmin
}

// ClearSession expires the session cookie.
func ClearSession(c *fiber.Ctx) {
	c.ClearCookie(TokenCookie)
}

// tokenFrom reads the session cookie, falling back to a Bearer header.
func tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
