package models

import "time"

type User struct {
	ID       uint `gorm:"primaryKey"`
	BranchID *uint
	Branch   *Branch

	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100"`

	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	PasswordHash string   `gorm:"size:255;not null"`

	// PIN girişi tanımlıysa dolu, yoksa nil
	PinHash *string `gorm:"size:255"`

	// Kimlik sağlayıcıdaki kullanıcı ID'si (dual-write senkronu için)
	ProviderID *string `gorm:"size:100;index"`

	// Kullanıcıya özel sayfa erişim listesi (JSON dizi).
	// nil = rol varsayılanı kullanılır.
	AllowedRoutes *string `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
