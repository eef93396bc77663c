package auth

import (
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxPrincipalKey = "principal"

// SessionMiddleware iki cookie'den oturumu çözer ve principal'ı locals'a
// koyar. Çözülemezse istek anonim devam eder; reddetmek RequireAuth'un işi.
func SessionMiddleware(resolver *Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		providerToken := c.Cookies(SessionCookie)
		pinToken := c.Cookies(PinSessionCookie)

		if p := resolver.Resolve(c.UserContext(), providerToken, pinToken); p != nil {
			c.Locals(CtxPrincipalKey, p)
		}
		return c.Next()
	}
}

// PrincipalFrom locals'tan çözülmüş oturum sahibini döner; anonimse nil.
func PrincipalFrom(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(CtxPrincipalKey).(*Principal)
	return p
}

func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PrincipalFrom(c) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}

		for _, r := range allowedRoles {
			if r == p.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}
