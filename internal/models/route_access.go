package models

import "time"

// RouteAccess rol bazlı sayfa erişim listesi. Routes JSON dizi olarak tutulur
// (ör: ["/pos","/floor-plan"]). Satırı olmayan rol kısıtsız sayılır.
type RouteAccess struct {
	ID        uint     `gorm:"primaryKey"`
	Role      UserRole `gorm:"size:20;uniqueIndex;not null"`
	Routes    string   `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
