package middleware

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Flash kinds.
const (
	FlashSuccess = "success_messages"
	FlashError   = "error_messages"
)

const flashTTL = time.Minute

// LocalFlash is the Locals key holding the messages consumed by Flash.
const LocalFlash = "flash"

// SetFlash queues a message shown on the next rendered page.
func SetFlash(c *fiber.Ctx, kind, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     kind,
		Value:    url.QueryEscape(message),
		Path:     "/",
		Expires:  time.Now().Add(flashTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Flash moves queued messages into Locals and clears them from the client.
func Flash() fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages := fiber.Map{}
		for _, kind := range []string{FlashSuccess, FlashError} {
			raw := c.Cookies(kind)
			if raw == "" {
				continue
			}
			if msg, err := url.QueryUnescape(raw); err == nil {
				messages[kind] = msg
			}
			c.ClearCookie(kind)
		}
		c.Locals(LocalFlash, messages)
		return c.Next()
	}
}

// Flashes returns the messages loaded by Flash.
func Flashes(c *fiber.Ctx) fiber.Map {
	if m, ok := c.Locals(LocalFlash).(fiber.Map); ok {
		return m
	}
	return fiber.Map{}
}
