package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// Sağlayıcı oturumunun access token'ını taşıyan cookie
	SessionCookie = "kasa_session"
	// Uygulamanın bastığı PIN oturum token'ını taşıyan cookie
	PinSessionCookie = "kasa_pin_session"
)

func setSessionCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
