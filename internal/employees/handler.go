package employees

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/auth"
	"kasa-backend/internal/database"
	"kasa-backend/internal/identity"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type EmployeeResponse struct {
	ID            uint            `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	IsActive      bool            `json:"is_active"`
	BranchID      *uint           `json:"branch_id"`
	HasPin        bool            `json:"has_pin"`
	AllowedRoutes []string        `json:"allowed_routes"`
	CreatedAt     string          `json:"created_at"`
}

type CreateEmployeeRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Pin       string          `json:"pin"`
	Role      models.UserRole `json:"role"`
	BranchID  *uint           `json:"branch_id"`
}

type UpdateEmployeeRequest struct {
	FirstName *string          `json:"first_name"`
	LastName  *string          `json:"last_name"`
	Email     *string          `json:"email"`
	Role      *models.UserRole `json:"role"`
	BranchID  *uint            `json:"branch_id"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type ResetPinRequest struct {
	Pin string `json:"pin"`
}

type SetRoutesRequest struct {
	Routes []string `json:"routes"`
}

func toResponse(u *models.User) EmployeeResponse {
	var routes []string
	if u.AllowedRoutes != nil {
		_ = json.Unmarshal([]byte(*u.AllowedRoutes), &routes)
	}
	return EmployeeResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role,
		IsActive:      u.IsActive,
		BranchID:      u.BranchID,
		HasPin:        u.PinHash != nil,
		AllowedRoutes: routes,
		CreatedAt:     u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// loadTarget id'deki hesabı yükler ve şube sınırını uygular: super_admin
// dışındaki herkes sadece kendi şubesindeki hesaplara dokunabilir.
func loadTarget(c *fiber.Ctx, p *auth.Principal) (*models.User, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı ID")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
	}

	if p.Role != models.RoleSuperAdmin {
		if p.BranchID == nil || user.BranchID == nil || *p.BranchID != *user.BranchID {
			return nil, fiber.NewError(fiber.StatusForbidden, "Bu kullanıcı sizin şubenizde değil")
		}
	}

	return &user, nil
}

// providerEmailTaken sağlayıcı tarafında aynı email'le kayıt olup olmadığına
// bakar. Sorgu patlarsa engel olunmaz; asıl çakışma AdminCreateUser'da zaten
// reddedilir.
func providerEmailTaken(ctx context.Context, provider identity.Provider, email string) bool {
	users, err := provider.ListUsersByEmail(ctx, email)
	if err != nil {
		log.Println("[WARN] sağlayıcı email sorgusu başarısız:", err)
		return false
	}
	for _, u := range users {
		if auth.NormalizeEmail(u.Email) == email {
			return true
		}
	}
	return false
}

// syncProviderEmail email değişikliğini sağlayıcıya yazar. Email iki yerde
// yaşar: sağlayıcı (asıl, şifreli giriş oradan doğrulanır) ve yerel kayıt.
// Sağlayıcı güncellenemezse hata döner; yarım kalan yazım şifreli girişi
// kalıcı bozar, o yüzden yerel yazım da yapılmamalı.
func syncProviderEmail(ctx context.Context, provider identity.Provider, user *models.User) error {
	if user.ProviderID == nil {
		log.Println("[WARN] provider_id eksik, email sadece yerelde güncelleniyor:", user.Email)
		return nil
	}
	if err := provider.AdminUpdateEmail(ctx, *user.ProviderID, user.Email); err != nil {
		log.Println("[ERROR] sağlayıcıda email güncellenemedi:", err)
		return err
	}
	return nil
}

// GET /api/employees
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		dbq := database.DB.Model(&models.User{})
		if p.Role == models.RoleSuperAdmin {
			if bidStr := c.Query("branch_id"); bidStr != "" {
				var bid uint
				if _, err := fmt.Sscan(bidStr, &bid); err == nil && bid > 0 {
					dbq = dbq.Where("branch_id = ?", bid)
				}
			}
		} else {
			if p.BranchID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			dbq = dbq.Where("branch_id = ?", *p.BranchID)
		}

		var users []models.User
		if err := dbq.Order("first_name ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]EmployeeResponse, 0, len(users))
		for i := range users {
			resp = append(resp, toResponse(&users[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/employees
// Sağlayıcı ve yerel kayıt birlikte yazılır; yerel yazım patlarsa
// sağlayıcıdaki kullanıcı geri silinir.
func CreateEmployeeHandler(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		email := auth.NormalizeEmail(body.Email)
		if body.FirstName == "" || !auth.ValidEmail(email) || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}
		if !models.ValidRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
		}
		if body.Pin != "" && !auth.ValidPin(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "PIN 4-6 haneli rakam olmalı")
		}

		// Kimse kendi derecesinde veya üstünde hesap açamaz
		if models.WouldEscalate(p.Role, body.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Kendi seviyenizde veya üstünde bir rolle hesap açamazsınız")
		}

		// Şube: super_admin istediği şubeye açar, diğerleri kendi şubesine
		branchID := body.BranchID
		if p.Role != models.RoleSuperAdmin {
			if p.BranchID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			branchID = p.BranchID
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu email ile kayıtlı kullanıcı var")
		}
		if providerEmailTaken(c.UserContext(), provider, email) {
			return fiber.NewError(fiber.StatusConflict, "Bu email ile kayıtlı kullanıcı var")
		}

		hash, err := auth.HashSecret(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		var pinHash *string
		if body.Pin != "" {
			ph, err := auth.HashSecret(body.Pin)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "PIN hashlenemedi")
			}
			pinHash = &ph
		}

		pu, err := provider.AdminCreateUser(c.UserContext(), email, body.Password)
		if err != nil {
			log.Println("[ERROR] sağlayıcıda kullanıcı açılamadı:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		user := models.User{
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        email,
			PasswordHash: hash,
			PinHash:      pinHash,
			Role:         body.Role,
			IsActive:     true,
			BranchID:     branchID,
			ProviderID:   &pu.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			if delErr := provider.AdminDeleteUser(c.UserContext(), pu.ID); delErr != nil {
				log.Println("[WARN] sağlayıcıdaki yarım kayıt silinemedi:", delErr)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		audit.Emit(audit.LogOptions{
			BranchID:    branchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "Kullanıcı açıldı: " + user.Email + " (" + string(user.Role) + ")",
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(&user))
	}
}

// PUT /api/employees/:id
// Profil güncelleme: hedefi yönetebilen veya hesabın kendisi. Rol değişikliği
// sadece hedefi yönetebilen VE yeni rol kendi derecesinin altında kalan
// hesaplara açık; kimse kendi rolünü değiştiremez. Email değişikliği önce
// sağlayıcıya yazılır, sonra yerele.
func UpdateEmployeeHandler(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		isSelf := p.UserID == user.ID
		if !isSelf && !models.CanManage(p.Role, user.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcıyı düzenleme yetkiniz yok")
		}

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.FirstName != nil && *body.FirstName != "" {
			user.FirstName = *body.FirstName
		}
		if body.LastName != nil {
			user.LastName = *body.LastName
		}
		emailChanged := false
		if body.Email != nil {
			email := auth.NormalizeEmail(*body.Email)
			if !auth.ValidEmail(email) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz email")
			}
			if email != user.Email {
				var count int64
				database.DB.Model(&models.User{}).
					Where("email = ? AND id <> ?", email, user.ID).
					Count(&count)
				if count > 0 {
					return fiber.NewError(fiber.StatusConflict, "Bu email ile kayıtlı kullanıcı var")
				}
				user.Email = email
				emailChanged = true
			}
		}

		if body.Role != nil && *body.Role != user.Role {
			if isSelf {
				return fiber.NewError(fiber.StatusForbidden, "Kendi rolünüzü değiştiremezsiniz")
			}
			if !models.ValidRole(*body.Role) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
			}
			if models.WouldEscalate(p.Role, *body.Role) {
				return fiber.NewError(fiber.StatusForbidden, "Kendi seviyenizde veya üstünde bir rol veremezsiniz")
			}
			user.Role = *body.Role
		}

		if body.BranchID != nil {
			if p.Role != models.RoleSuperAdmin {
				return fiber.NewError(fiber.StatusForbidden, "Şube değişikliğini sadece super admin yapabilir")
			}
			user.BranchID = body.BranchID
		}

		if emailChanged {
			if err := syncProviderEmail(c.UserContext(), provider, user); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Email güncellenemedi")
			}
		}

		if err := database.DB.Save(user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		audit.Emit(audit.LogOptions{
			BranchID:    user.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "Kullanıcı güncellendi: " + user.Email,
		})

		return c.JSON(toResponse(user))
	}
}

// POST /api/employees/:id/deactivate
func DeactivateEmployeeHandler() fiber.Handler {
	return setActiveHandler(false)
}

// POST /api/employees/:id/reactivate
func ReactivateEmployeeHandler() fiber.Handler {
	return setActiveHandler(true)
}

func setActiveHandler(active bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		// Kimse kendi hesabını kapatamaz/açamaz
		if p.UserID == user.ID {
			return fiber.NewError(fiber.StatusForbidden, "Kendi hesabınız üzerinde bu işlemi yapamazsınız")
		}
		if !models.CanManage(p.Role, user.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcı üzerinde yetkiniz yok")
		}

		user.IsActive = active
		if err := database.DB.Save(user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		action := models.AuditActionDeactivate
		desc := "Kullanıcı pasife alındı: " + user.Email
		if active {
			action = models.AuditActionReactivate
			desc = "Kullanıcı aktife alındı: " + user.Email
		}
		audit.Emit(audit.LogOptions{
			BranchID:    user.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      action,
			Description: desc,
		})

		return c.JSON(toResponse(user))
	}
}

// DELETE /api/employees/:id
// Kalıcı silme sadece super admin'e açık; super admin hesabı silinmez,
// ancak pasife alınabilir.
func DeleteEmployeeHandler(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		if p.Role != models.RoleSuperAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Hesap silmeyi sadece super admin yapabilir")
		}

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		if p.UserID == user.ID {
			return fiber.NewError(fiber.StatusForbidden, "Kendi hesabınızı silemezsiniz")
		}
		if user.Role == models.RoleSuperAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Super admin hesabı silinemez, sadece pasife alınabilir")
		}

		if user.ProviderID != nil {
			if err := provider.AdminDeleteUser(c.UserContext(), *user.ProviderID); err != nil {
				log.Println("[WARN] sağlayıcıdan kullanıcı silinemedi:", err)
			}
		}

		email := user.Email
		branchID := user.BranchID
		if err := database.DB.Delete(user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı silinemedi")
		}

		audit.Emit(audit.LogOptions{
			BranchID:    branchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionDelete,
			Description: "Kullanıcı silindi: " + email,
		})

		return c.JSON(fiber.Map{"message": "Kullanıcı silindi"})
	}
}

// POST /api/employees/:id/reset-password
// Şifre iki yerde yaşar: kimlik sağlayıcı (asıl) ve yerel digest (önbellek).
// İkisi birden güncellenir; yarım kalan yazım uyarı olarak loglanır.
func ResetPasswordHandler(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		if p.UserID != user.ID && !models.CanManage(p.Role, user.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcının şifresini sıfırlama yetkiniz yok")
		}

		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 8 karakter olmalı")
		}

		hash, err := auth.HashSecret(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		if user.ProviderID != nil {
			if err := provider.AdminUpdatePassword(c.UserContext(), *user.ProviderID, body.Password); err != nil {
				log.Println("[ERROR] sağlayıcıda şifre güncellenemedi:", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre sıfırlanamadı")
			}
		} else {
			log.Println("[WARN] provider_id eksik, şifre sadece yerelde güncelleniyor:", user.Email)
		}

		if err := database.DB.Model(user).Update("password_hash", hash).Error; err != nil {
			// Sağlayıcı güncellendi, yerel önbellek eski kaldı
			log.Println("[WARN] yerel şifre digest'i güncellenemedi, kayıtlar tutarsız:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre sıfırlanamadı")
		}

		audit.Emit(audit.LogOptions{
			BranchID:    user.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionPasswordReset,
			Description: "Şifre sıfırlandı: " + user.Email,
		})

		return c.JSON(fiber.Map{"message": "Şifre sıfırlandı"})
	}
}

// POST /api/employees/:id/reset-pin
func ResetPinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		if p.UserID != user.ID && !models.CanManage(p.Role, user.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcının PIN'ini sıfırlama yetkiniz yok")
		}

		var body ResetPinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if !auth.ValidPin(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "PIN 4-6 haneli rakam olmalı")
		}

		hash, err := auth.HashSecret(body.Pin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PIN hashlenemedi")
		}

		if err := database.DB.Model(user).Update("pin_hash", hash).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PIN sıfırlanamadı")
		}

		audit.Emit(audit.LogOptions{
			BranchID:    user.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionPinReset,
			Description: "PIN sıfırlandı: " + user.Email,
		})

		return c.JSON(fiber.Map{"message": "PIN sıfırlandı"})
	}
}

// PUT /api/employees/:id/routes
// Kullanıcıya özel sayfa listesi; boş gönderilirse override kalkar, rol
// varsayılanı geçerli olur.
func SetEmployeeRoutesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.PrincipalFrom(c)

		user, err := loadTarget(c, p)
		if err != nil {
			return err
		}

		if !models.CanManage(p.Role, user.Role) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcının erişim listesini değiştirme yetkiniz yok")
		}

		var body SetRoutesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		routes := make([]string, 0, len(body.Routes))
		for _, r := range body.Routes {
			r = strings.TrimSpace(r)
			if r != "" {
				routes = append(routes, r)
			}
		}

		if len(routes) == 0 {
			if err := database.DB.Model(user).Update("allowed_routes", nil).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi güncellenemedi")
			}
		} else {
			raw, err := json.Marshal(routes)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi kodlanamadı")
			}
			if err := database.DB.Model(user).Update("allowed_routes", string(raw)).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erişim listesi güncellenemedi")
			}
		}

		audit.Emit(audit.LogOptions{
			BranchID:    user.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionRoutesUpdate,
			Description: "Kullanıcı erişim listesi güncellendi: " + user.Email,
		})

		return c.JSON(fiber.Map{"routes": routes})
	}
}
