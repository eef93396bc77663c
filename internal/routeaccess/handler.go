package routeaccess

import (
	"encoding/json"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/auth"
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpdateRouteAccessRequest struct {
	Routes []string `json:"routes"`
}

// GET /api/route-access
// Rol bazlı sayfa erişim listelerini döner. Satırı olmayan rol kısıtsızdır.
func ListRouteAccessHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.RouteAccess
		if err := database.DB.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erişim listeleri okunamadı")
		}

		resp := make(map[models.UserRole][]string, len(rows))
		for i := range rows {
			resp[rows[i].Role] = parseRoutes(&rows[i].Routes)
		}
		return c.JSON(resp)
	}
}

// PUT /api/route-access/:role
// Boş liste gönderilirse satır silinir, rol kısıtsız kalır.
func UpdateRouteAccessHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}

		role := models.UserRole(c.Params("role"))
		if !models.ValidRole(role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
		}
		// Kendi derecesinde veya üstünde bir rolün erişimini değiştiremez
		if !models.CanManage(p.Role, role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu rolün erişim listesini değiştirme yetkiniz yok")
		}

		var body UpdateRouteAccessRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		routes := make([]string, 0, len(body.Routes))
		for _, r := range body.Routes {
			if r != "" {
				routes = append(routes, r)
			}
		}

		if len(routes) == 0 {
			if err := database.DB.Delete(&models.RouteAccess{}, "role = ?", role).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi silinemedi")
			}
		} else {
			raw, err := json.Marshal(routes)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi kodlanamadı")
			}

			var row models.RouteAccess
			err = database.DB.Where("role = ?", role).First(&row).Error
			if err == nil {
				row.Routes = string(raw)
				err = database.DB.Save(&row).Error
			} else {
				err = database.DB.Create(&models.RouteAccess{Role: role, Routes: string(raw)}).Error
			}
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi kaydedilemedi")
			}
		}

		audit.Emit(audit.LogOptions{
			BranchID:    p.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "route_access",
			Action:      models.AuditActionRoutesUpdate,
			Description: "Rol erişim listesi güncellendi: " + string(role),
		})

		return c.JSON(fiber.Map{"role": role, "routes": routes})
	}
}
