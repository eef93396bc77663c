package auth

import (
	"errors"
	"fmt"
	"time"

	"kasa-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PinSessionClaims PIN girişinde basılan oturum token'ının içeriği.
// Rol ve şube, basım anındaki fotoğraftır; token ömrü boyunca canlı
// hesapla tekrar karşılaştırılmaz.
type PinSessionClaims struct {
	UserID    uint            `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	BranchID  *uint           `json:"branch_id"`
	Name      string          `json:"name"`
	IsPinAuth bool            `json:"is_pin_auth"`
	jwt.RegisteredClaims
}

// GeneratePinToken PIN oturumu için imzalı token üretir.
func GeneratePinToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	claims := &PinSessionClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		BranchID:  user.BranchID,
		Name:      user.FullName(),
		IsPinAuth: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParsePinToken imza ve süre kontrolüyle token'ı çözer.
func ParsePinToken(secret, tokenStr string) (*PinSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &PinSessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("geçersiz imzalama yöntemi")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("geçersiz token")
	}
	claims, ok := token.Claims.(*PinSessionClaims)
	if !ok {
		return nil, errors.New("token çözümlenemedi")
	}
	if !claims.IsPinAuth {
		return nil, errors.New("PIN oturumu değil")
	}
	return claims, nil
}
