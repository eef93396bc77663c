package main

import (
	"log"
	"strings"

	"kasa-backend/internal/admin"
	"kasa-backend/internal/audit"
	"kasa-backend/internal/auth"
	"kasa-backend/internal/config"
	"kasa-backend/internal/database"
	"kasa-backend/internal/employees"
	"kasa-backend/internal/identity"
	"kasa-backend/internal/models"
	"kasa-backend/internal/routeaccess"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	policies := auth.LockoutPolicies{
		Password: auth.LockoutPolicy{MaxAttempts: cfg.PasswordMaxAttempts, Window: cfg.PasswordLockoutWindow},
		Pin:      auth.LockoutPolicy{MaxAttempts: cfg.PinMaxAttempts, Window: cfg.PinLockoutWindow},
	}

	var tracker auth.LockoutTracker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		tracker = auth.NewRedisLockoutTracker(client, policies)
		log.Println("Lockout sayaçları Redis'te paylaşılıyor:", cfg.RedisAddr)
	} else {
		tracker = auth.NewMemoryLockoutTracker(policies)
	}

	provider := identity.NewClient(cfg.IdentityURL, cfg.IdentityServiceKey)
	accounts := auth.DBAccountSource{}
	resolver := &auth.Resolver{Provider: provider, Accounts: accounts, Secret: cfg.JWTSecret}

	handlers := &auth.Handlers{
		Cfg:      cfg,
		Tracker:  tracker,
		Provider: provider,
		Accounts: accounts,
		Audit: func(action models.AuditAction, userID uint, userName string, branchID *uint, description string) {
			audit.Emit(audit.LogOptions{
				BranchID:    branchID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "user",
				EntityID:    userID,
				Action:      action,
				Description: description,
			})
		},
		Landing: routeaccess.LandingRouteFor,
		Routes:  routeaccess.AllowedRoutesFor,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	api := app.Group("/api")
	api.Use(auth.SessionMiddleware(resolver))

	// Public auth
	api.Post("/auth/register-super-admin", handlers.RegisterSuperAdminHandler())
	api.Post("/auth/login", handlers.LoginHandler())
	api.Post("/auth/login-pin", handlers.PinLoginHandler())
	api.Post("/auth/logout", handlers.LogoutHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.RequireAuth())

	protected.Get("/auth/me", handlers.MeHandler())
	protected.Post("/auth/unlock", handlers.UnlockHandler())

	// Çalışan yönetimi (manager ve üstü)
	staffOnly := auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager)
	protected.Get("/employees", staffOnly, employees.ListEmployeesHandler())
	protected.Post("/employees", staffOnly, employees.CreateEmployeeHandler(provider))
	protected.Put("/employees/:id", employees.UpdateEmployeeHandler(provider))
	protected.Post("/employees/:id/deactivate", staffOnly, employees.DeactivateEmployeeHandler())
	protected.Post("/employees/:id/reactivate", staffOnly, employees.ReactivateEmployeeHandler())
	protected.Delete("/employees/:id", employees.DeleteEmployeeHandler(provider))
	protected.Post("/employees/:id/reset-password", employees.ResetPasswordHandler(provider))
	protected.Post("/employees/:id/reset-pin", employees.ResetPinHandler())
	protected.Put("/employees/:id/routes", staffOnly, employees.SetEmployeeRoutesHandler())

	// Rol bazlı sayfa erişim listeleri
	protected.Get("/route-access", staffOnly, routeaccess.ListRouteAccessHandler())
	protected.Put("/route-access/:role", staffOnly, routeaccess.UpdateRouteAccessHandler())

	// Audit logs
	protected.Get("/audit-logs", staffOnly, audit.ListAuditLogsHandler())

	// Şube yönetimi (super admin)
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
