package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kasa-backend/internal/config"
	"kasa-backend/internal/database"
	"kasa-backend/internal/identity"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Tek tip mesajlar: hangi adımın patladığı dışarı sızmaz (hesap taraması önlemi)
const (
	msgBadCredentials    = "Email veya şifre hatalı"
	msgBadPinCredentials = "Email veya PIN hatalı"
	msgLockedOut         = "Çok fazla başarısız deneme. Lütfen daha sonra tekrar deneyin."
)

// AuditEmitter güvenlik olaylarını audit'e düşer. Best-effort: nil olabilir,
// hatası giriş akışını asla etkilemez.
type AuditEmitter func(action models.AuditAction, userID uint, userName string, branchID *uint, description string)

// Handlers giriş/çıkış uçlarının bağımlılıkları. Landing ve Routes sayfa
// erişim çözücüsünden enjekte edilir; auth çekirdeği o pakete bağlanmaz.
type Handlers struct {
	Cfg      *config.Config
	Tracker  LockoutTracker
	Provider identity.Provider
	Accounts AccountSource
	Audit    AuditEmitter
	Landing  func(*models.User) string
	Routes   func(*models.User) ([]string, bool)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PinLoginRequest struct {
	Email string `json:"email"`
	Pin   string `json:"pin"`
}

type UnlockRequest struct {
	Pin string `json:"pin"`
}

type RegisterSuperAdminRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *Handlers) emit(action models.AuditAction, userID uint, userName string, branchID *uint, description string) {
	if h.Audit != nil {
		h.Audit(action, userID, userName, branchID, description)
	}
}

func (h *Handlers) landingFor(user *models.User) string {
	if h.Landing != nil {
		return h.Landing(user)
	}
	return "/"
}

// recordFailure sayacı artırır; bu deneme eşiği doldurduysa lockout
// olayını audit'e düşer.
func (h *Handlers) recordFailure(ctx context.Context, key string, mode LockoutMode, user *models.User) {
	if err := h.Tracker.RecordFailure(ctx, key, mode); err != nil {
		log.Println("[WARN] lockout sayacı artırılamadı:", err)
		return
	}
	st, err := h.Tracker.Check(ctx, key, mode)
	if err != nil || !st.Locked {
		return
	}

	var userID uint
	var userName string
	var branchID *uint
	if user != nil {
		userID, userName, branchID = user.ID, user.FullName(), user.BranchID
	}
	h.emit(models.AuditActionLockout, userID, userName, branchID,
		fmt.Sprintf("Deneme limiti aşıldı (%s): %s", mode, key))
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"role":       user.Role,
		"branch_id":  user.BranchID,
	}
}

// POST /api/auth/login
// Şifreli giriş kimlik sağlayıcıya delege edilir; uygulama token basmaz,
// sağlayıcının access token'ını cookie'de taşır.
func (h *Handlers) LoginHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		email := NormalizeEmail(body.Email)
		if !ValidEmail(email) || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, msgBadCredentials)
		}

		ctx := c.UserContext()

		st, err := h.Tracker.Check(ctx, email, LockoutModePassword)
		if err != nil {
			log.Println("[WARN] lockout kontrolü başarısız:", err)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}
		if st.Locked {
			return fiber.NewError(fiber.StatusUnauthorized, msgLockedOut)
		}

		user, err := h.Accounts.ByEmail(email)
		if err != nil || !user.IsActive {
			// Bilinmeyen/pasif hesap da sayaca işlenir, mesaj aynı kalır
			h.recordFailure(ctx, email, LockoutModePassword, nil)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}

		sess, err := h.Provider.SignIn(ctx, email, body.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				h.recordFailure(ctx, email, LockoutModePassword, user)
			} else {
				// Altyapı hatası: detay loglanır, kullanıcıya aynı genel mesaj
				log.Println("[ERROR] kimlik sağlayıcı girişi başarısız:", err)
			}
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}

		if err := h.Tracker.Reset(ctx, email, LockoutModePassword); err != nil {
			log.Println("[WARN] lockout sıfırlanamadı:", err)
		}

		ttl := 24 * time.Hour
		if sess.ExpiresIn > 0 {
			ttl = time.Duration(sess.ExpiresIn) * time.Second
		}
		setSessionCookie(c, SessionCookie, sess.AccessToken, ttl)

		// Sağlayıcı ID'si yerelde eksikse senkronla
		if user.ProviderID == nil || *user.ProviderID != sess.User.ID {
			pid := sess.User.ID
			if err := database.DB.Model(user).Update("provider_id", pid).Error; err != nil {
				log.Println("[WARN] provider_id senkronlanamadı:", err)
			}
		}

		h.emit(models.AuditActionLogin, user.ID, user.FullName(), user.BranchID, "Şifre ile giriş")

		return c.JSON(fiber.Map{
			"user":    userResponse(user),
			"landing": h.landingFor(user),
		})
	}
}

// POST /api/auth/login-pin
// PIN yerelde doğrulanır, uygulama kendi imzalı oturum token'ını basar.
func (h *Handlers) PinLoginHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PinLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		email := NormalizeEmail(body.Email)
		if !ValidEmail(email) || !ValidPin(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, msgBadPinCredentials)
		}

		ctx := c.UserContext()

		st, err := h.Tracker.Check(ctx, email, LockoutModePin)
		if err != nil {
			log.Println("[WARN] lockout kontrolü başarısız:", err)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadPinCredentials)
		}
		if st.Locked {
			return fiber.NewError(fiber.StatusUnauthorized, msgLockedOut)
		}

		user, err := h.Accounts.ByEmail(email)
		if err != nil || !user.IsActive || user.PinHash == nil {
			h.recordFailure(ctx, email, LockoutModePin, nil)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadPinCredentials)
		}

		if !VerifyPin(body.Pin, *user.PinHash) {
			h.recordFailure(ctx, email, LockoutModePin, user)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadPinCredentials)
		}

		token, err := GeneratePinToken(h.Cfg.JWTSecret, user, h.Cfg.PinSessionTTL)
		if err != nil {
			log.Println("[ERROR] PIN oturum token'ı üretilemedi:", err)
			return fiber.NewError(fiber.StatusUnauthorized, msgBadPinCredentials)
		}

		if err := h.Tracker.Reset(ctx, email, LockoutModePin); err != nil {
			log.Println("[WARN] lockout sıfırlanamadı:", err)
		}

		setSessionCookie(c, PinSessionCookie, token, h.Cfg.PinSessionTTL)

		h.emit(models.AuditActionLogin, user.ID, user.FullName(), user.BranchID, "PIN ile giriş")

		return c.JSON(fiber.Map{
			"user":    userResponse(user),
			"landing": h.landingFor(user),
		})
	}
}

// POST /api/auth/unlock
// Açık oturumun PIN ile yeniden doğrulanması (ekran kilidi). Lockout
// anahtarı "unlock:<id>": aynı sayaç primitifini ayrı akış korur.
func (h *Handlers) UnlockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}

		var body UnlockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if !ValidPin(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "PIN hatalı")
		}

		ctx := c.UserContext()
		key := fmt.Sprintf("unlock:%d", p.UserID)

		st, err := h.Tracker.Check(ctx, key, LockoutModePin)
		if err != nil {
			log.Println("[WARN] lockout kontrolü başarısız:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "PIN hatalı")
		}
		if st.Locked {
			return fiber.NewError(fiber.StatusUnauthorized, msgLockedOut)
		}

		user, err := h.Accounts.ByID(p.UserID)
		if err != nil || !user.IsActive || user.PinHash == nil {
			h.recordFailure(ctx, key, LockoutModePin, nil)
			return fiber.NewError(fiber.StatusUnauthorized, "PIN hatalı")
		}

		if !VerifyPin(body.Pin, *user.PinHash) {
			h.recordFailure(ctx, key, LockoutModePin, user)
			return fiber.NewError(fiber.StatusUnauthorized, "PIN hatalı")
		}

		if err := h.Tracker.Reset(ctx, key, LockoutModePin); err != nil {
			log.Println("[WARN] lockout sıfırlanamadı:", err)
		}

		// Kilit açılınca taze bir PIN oturumu bas
		token, err := GeneratePinToken(h.Cfg.JWTSecret, user, h.Cfg.PinSessionTTL)
		if err == nil {
			setSessionCookie(c, PinSessionCookie, token, h.Cfg.PinSessionTTL)
		} else {
			log.Println("[WARN] kilit açmada PIN token yenilenemedi:", err)
		}

		return c.JSON(fiber.Map{"message": "Kilit açıldı"})
	}
}

// POST /api/auth/logout
// İki cookie de her zaman temizlenir: sağlayıcı girişi üstüne PIN oturumu
// açılmış olabilir. Hatalar yutulur, çıkış asla başarısız olmaz.
func (h *Handlers) LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(SessionCookie); token != "" {
			if err := h.Provider.SignOut(c.UserContext(), token); err != nil {
				log.Println("[WARN] sağlayıcı çıkışı başarısız:", err)
			}
		}

		clearSessionCookie(c, SessionCookie)
		clearSessionCookie(c, PinSessionCookie)

		if p := PrincipalFrom(c); p != nil {
			h.emit(models.AuditActionLogout, p.UserID, p.Name, p.BranchID, "Çıkış")
		}

		return c.JSON(fiber.Map{
			"message":  "Çıkış yapıldı",
			"redirect": "/login",
		})
	}
}

// GET /api/auth/me
func (h *Handlers) MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}

		resp := fiber.Map{
			"user_id":   p.UserID,
			"name":      p.Name,
			"email":     p.Email,
			"role":      p.Role,
			"branch_id": p.BranchID,
			"source":    p.Source,
		}

		if user, err := h.Accounts.ByID(p.UserID); err == nil {
			if h.Routes != nil {
				routes, unrestricted := h.Routes(user)
				resp["allowed_routes"] = routes
				resp["unrestricted"] = unrestricted
			}
			resp["landing"] = h.landingFor(user)
		}

		return c.JSON(resp)
	}
}

// POST /api/auth/register-super-admin
// İlk kurulum ucu: sistemde super admin yoksa bir tane açar. Sağlayıcı ve
// yerel kayıt birlikte yazılır; yerel yazım patlarsa sağlayıcıdaki kullanıcı
// geri silinir.
func (h *Handlers) RegisterSuperAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		email := NormalizeEmail(body.Email)
		if body.FirstName == "" || !ValidEmail(email) || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleSuperAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir super admin var")
		}

		hash, err := HashSecret(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		pu, err := h.Provider.AdminCreateUser(c.UserContext(), email, body.Password)
		if err != nil {
			log.Println("[ERROR] sağlayıcıda kullanıcı açılamadı:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		user := models.User{
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleSuperAdmin,
			IsActive:     true,
			ProviderID:   &pu.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			// Çift yazımın yarısı kaldı: sağlayıcıdaki kaydı geri al
			if delErr := h.Provider.AdminDeleteUser(c.UserContext(), pu.ID); delErr != nil {
				log.Println("[WARN] sağlayıcıdaki yarım kayıt silinemedi:", delErr)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		h.emit(models.AuditActionCreate, user.ID, user.FullName(), nil, "Super admin kuruldu")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}
