package models

import "time"

type AuditAction string

const (
	AuditActionLogin         AuditAction = "login"
	AuditActionLogout        AuditAction = "logout"
	AuditActionLockout       AuditAction = "lockout"
	AuditActionCreate        AuditAction = "create"
	AuditActionUpdate        AuditAction = "update"
	AuditActionDeactivate    AuditAction = "deactivate"
	AuditActionReactivate    AuditAction = "reactivate"
	AuditActionDelete        AuditAction = "delete"
	AuditActionPasswordReset AuditAction = "password_reset"
	AuditActionPinReset      AuditAction = "pin_reset"
	AuditActionRoutesUpdate  AuditAction = "routes_update"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Hangi şube?
	BranchID *uint `json:"branch_id"`

	// İşlemi yapan kullanıcı
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // Kullanıcı adı (denormalize)

	// Hangi entity? (ör: "user", "branch", "route_access")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	// İşlem tipi: login/logout/lockout/create/update/...
	Action AuditAction `gorm:"size:20" json:"action"`

	// Opsiyonel açıklama (küçük bir özet)
	Description string `gorm:"size:255" json:"description"`
}
