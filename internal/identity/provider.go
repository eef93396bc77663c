package identity

import (
	"context"
	"errors"
)

// ErrInvalidCredentials sağlayıcının girişi reddettiğini bildirir.
// Çağıran bunu da genel "email veya şifre hatalı" mesajına çevirir.
var ErrInvalidCredentials = errors.New("geçersiz kimlik bilgisi")

// ErrUserNotFound sağlayıcıda kullanıcı bulunamadığında döner.
var ErrUserNotFound = errors.New("kullanıcı bulunamadı")

// ProviderUser kimlik sağlayıcıdaki kullanıcı kaydı.
type ProviderUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session sağlayıcının verdiği oturum. AccessToken cookie'de taşınır,
// içeriği uygulama tarafından yorumlanmaz.
type Session struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        ProviderUser `json:"user"`
}

// Provider kimlik sağlayıcı istemcisi. Şifreli giriş ve oturum yaşam
// döngüsü tamamen sağlayıcıya ait; uygulama sadece token ile sorgular.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)

	// Yönetim ucu: hesap açma/email ve şifre güncelleme/silme. Yerel
	// kayıtla birlikte çift yazılır (dual-write).
	AdminCreateUser(ctx context.Context, email, password string) (*ProviderUser, error)
	AdminUpdateEmail(ctx context.Context, userID, email string) error
	AdminUpdatePassword(ctx context.Context, userID, password string) error
	AdminDeleteUser(ctx context.Context, userID string) error
	ListUsersByEmail(ctx context.Context, email string) ([]ProviderUser, error)
}
