package audit

import (
	"errors"
	"fmt"
	"log"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

type LogOptions struct {
	BranchID    *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
}

func WriteLog(opts LogOptions) error {
	if database.DB == nil {
		return errors.New("veritabanı bağlantısı yok")
	}

	entry := models.AuditLog{
		BranchID:    opts.BranchID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// Emit audit yazımını ana akıştan koparır: hata sadece loglanır,
// giriş/çıkış gibi kritik yollar asla bloklanmaz.
func Emit(opts LogOptions) {
	if err := WriteLog(opts); err != nil {
		log.Println("[WARN] audit log yazılamadı:", err)
	}
}
