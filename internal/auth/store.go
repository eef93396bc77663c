package auth

import (
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// DBAccountSource hesapları gorm üzerinden okur.
type DBAccountSource struct{}

func (DBAccountSource) ByID(id uint) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (DBAccountSource) ByEmail(email string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (DBAccountSource) ByProviderID(providerID string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "provider_id = ?", providerID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

var _ AccountSource = DBAccountSource{}
