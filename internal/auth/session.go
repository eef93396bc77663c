package auth

import (
	"context"
	"errors"
	"log"

	"kasa-backend/internal/identity"
	"kasa-backend/internal/models"
)

// PrincipalSource oturumun hangi yoldan açıldığını işaretler. PIN oturumu
// sağlayıcı seviyesinde yeniden doğrulama garantisi taşımaz; hassas işlemler
// bu etikete bakabilir.
type PrincipalSource string

const (
	SourceProvider PrincipalSource = "provider"
	SourcePin      PrincipalSource = "pin"
)

// Principal çözümlenmiş oturum sahibi. İki giriş yolu da bu tek şekle iner.
type Principal struct {
	UserID   uint
	Email    string
	Name     string
	Role     models.UserRole
	BranchID *uint
	Source   PrincipalSource
}

// ErrAccountNotFound yerel hesap kaydı bulunamadığında döner.
var ErrAccountNotFound = errors.New("hesap bulunamadı")

// AccountSource çözümleme sırasında hesap kayıtlarını okur.
type AccountSource interface {
	ByID(id uint) (*models.User, error)
	ByEmail(email string) (*models.User, error)
	ByProviderID(providerID string) (*models.User, error)
}

// Resolver gelen istekteki iki cookie'den oturum sahibini çözer.
// Sıra sabit: önce sağlayıcı oturumu, sonra PIN oturumu; ikisi de yoksa anonim.
type Resolver struct {
	Provider identity.Provider
	Accounts AccountSource
	Secret   string
}

// Resolve nil dönerse istek anonimdir. Altyapı hataları girişe
// dönüştürülmez; loglanır ve bir sonraki adıma geçilir.
func (r *Resolver) Resolve(ctx context.Context, providerToken, pinToken string) *Principal {
	if providerToken != "" {
		if p := r.resolveProvider(ctx, providerToken); p != nil {
			return p
		}
	}
	if pinToken != "" {
		if p := r.resolvePin(pinToken); p != nil {
			return p
		}
	}
	return nil
}

func (r *Resolver) resolveProvider(ctx context.Context, token string) *Principal {
	pu, err := r.Provider.GetUser(ctx, token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			log.Println("[WARN] sağlayıcı oturum sorgusu başarısız:", err)
		}
		return nil
	}

	user, err := r.Accounts.ByProviderID(pu.ID)
	if err != nil {
		// Sağlayıcı ID'si henüz senkronlanmamış olabilir, email ile dene
		user, err = r.Accounts.ByEmail(NormalizeEmail(pu.Email))
		if err != nil {
			return nil
		}
	}
	if !user.IsActive {
		return nil
	}

	return &Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.FullName(),
		Role:     user.Role,
		BranchID: user.BranchID,
		Source:   SourceProvider,
	}
}

func (r *Resolver) resolvePin(token string) *Principal {
	claims, err := ParsePinToken(r.Secret, token)
	if err != nil {
		return nil
	}

	user, err := r.Accounts.ByID(claims.UserID)
	if err != nil || !user.IsActive {
		return nil
	}

	// Rol ve şube token basıldığı andaki fotoğraftır; canlı kayıttan
	// sadece aktiflik kontrol edilir.
	return &Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     claims.Role,
		BranchID: claims.BranchID,
		Source:   SourcePin,
	}
}
