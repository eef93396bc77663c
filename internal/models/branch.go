package models

import "time"

// Branch işletme/şube kaydı; tüm hesap ve audit sorgularının kapsama sınırı.
type Branch struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
