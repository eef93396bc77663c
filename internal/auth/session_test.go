package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"kasa-backend/internal/identity"
	"kasa-backend/internal/models"
)

var errProviderDown = errors.New("sağlayıcıya ulaşılamadı")

type fakeProvider struct {
	// token -> sağlayıcı kullanıcısı
	sessions map[string]identity.ProviderUser
	signOuts int
	err      error
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*identity.Session, error) {
	return nil, identity.ErrInvalidCredentials
}

func (f *fakeProvider) SignOut(_ context.Context, _ string) error {
	f.signOuts++
	return f.err
}

func (f *fakeProvider) GetUser(_ context.Context, token string) (*identity.ProviderUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.sessions[token]; ok {
		return &u, nil
	}
	return nil, identity.ErrInvalidCredentials
}

func (f *fakeProvider) AdminCreateUser(_ context.Context, email, _ string) (*identity.ProviderUser, error) {
	return &identity.ProviderUser{ID: "prov-" + email, Email: email}, nil
}

func (f *fakeProvider) AdminUpdateEmail(_ context.Context, _, _ string) error    { return nil }
func (f *fakeProvider) AdminUpdatePassword(_ context.Context, _, _ string) error { return nil }
func (f *fakeProvider) AdminDeleteUser(_ context.Context, _ string) error        { return nil }
func (f *fakeProvider) ListUsersByEmail(_ context.Context, _ string) ([]identity.ProviderUser, error) {
	return nil, nil
}

type fakeAccounts struct {
	users []*models.User
}

func (f *fakeAccounts) ByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeAccounts) ByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeAccounts) ByProviderID(pid string) (*models.User, error) {
	for _, u := range f.users {
		if u.ProviderID != nil && *u.ProviderID == pid {
			return u, nil
		}
	}
	return nil, ErrAccountNotFound
}

func newTestResolver() (*Resolver, *fakeProvider, *fakeAccounts) {
	pidAli := "prov-ali"
	accounts := &fakeAccounts{users: []*models.User{
		{ID: 1, FirstName: "Ali", Email: "ali@example.com", Role: models.RoleAdmin, IsActive: true, ProviderID: &pidAli},
		{ID: 2, FirstName: "Ayşe", Email: "ayse@example.com", Role: models.RoleCashier, IsActive: true},
	}}
	provider := &fakeProvider{sessions: map[string]identity.ProviderUser{
		"tok-ali": {ID: "prov-ali", Email: "ali@example.com"},
	}}
	return &Resolver{Provider: provider, Accounts: accounts, Secret: testSecret}, provider, accounts
}

func TestResolveProviderSession(t *testing.T) {
	r, _, _ := newTestResolver()

	p := r.Resolve(context.Background(), "tok-ali", "")
	if p == nil {
		t.Fatal("expected principal")
	}
	if p.UserID != 1 || p.Source != SourceProvider {
		t.Fatalf("got %+v", p)
	}
}

func TestResolvePinSession(t *testing.T) {
	r, _, accounts := newTestResolver()

	token, err := GeneratePinToken(testSecret, accounts.users[1], time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	p := r.Resolve(context.Background(), "", token)
	if p == nil {
		t.Fatal("expected principal")
	}
	if p.UserID != 2 || p.Source != SourcePin {
		t.Fatalf("got %+v", p)
	}
	if p.Role != models.RoleCashier {
		t.Fatalf("role = %s", p.Role)
	}
}

func TestResolveProviderWinsOverPin(t *testing.T) {
	// Farklı hesaplar için iki geçerli oturum: sağlayıcı kazanır
	r, _, accounts := newTestResolver()

	pinToken, err := GeneratePinToken(testSecret, accounts.users[1], time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	p := r.Resolve(context.Background(), "tok-ali", pinToken)
	if p == nil {
		t.Fatal("expected principal")
	}
	if p.UserID != 1 || p.Source != SourceProvider {
		t.Fatalf("provider session must take precedence, got %+v", p)
	}
}

func TestResolveFallsBackToPinWhenProviderInvalid(t *testing.T) {
	r, _, accounts := newTestResolver()

	pinToken, _ := GeneratePinToken(testSecret, accounts.users[1], time.Hour)

	p := r.Resolve(context.Background(), "tok-unknown", pinToken)
	if p == nil || p.Source != SourcePin || p.UserID != 2 {
		t.Fatalf("expected pin principal, got %+v", p)
	}
}

func TestResolveInactiveAccountIsAnonymous(t *testing.T) {
	r, _, accounts := newTestResolver()
	accounts.users[0].IsActive = false

	if p := r.Resolve(context.Background(), "tok-ali", ""); p != nil {
		t.Fatalf("inactive account must resolve anonymous, got %+v", p)
	}

	accounts.users[1].IsActive = false
	pinToken, _ := GeneratePinToken(testSecret, accounts.users[1], time.Hour)
	if p := r.Resolve(context.Background(), "", pinToken); p != nil {
		t.Fatalf("inactive pin account must resolve anonymous, got %+v", p)
	}
}

func TestResolveAnonymous(t *testing.T) {
	r, _, _ := newTestResolver()
	if p := r.Resolve(context.Background(), "", ""); p != nil {
		t.Fatalf("no cookies must resolve anonymous, got %+v", p)
	}
}

func TestResolveProviderOutageFallsThrough(t *testing.T) {
	// Sağlayıcı erişilemezken geçerli PIN oturumu çalışmaya devam eder
	r, provider, accounts := newTestResolver()
	provider.err = errors.New("connection refused")

	pinToken, _ := GeneratePinToken(testSecret, accounts.users[1], time.Hour)
	p := r.Resolve(context.Background(), "tok-ali", pinToken)
	if p == nil || p.Source != SourcePin {
		t.Fatalf("expected pin fallback during provider outage, got %+v", p)
	}
}

func TestResolvePinSnapshotRole(t *testing.T) {
	// Token basıldıktan sonra rol değişirse token eski rolü taşımaya devam
	// eder; sadece aktiflik canlı kontrol edilir.
	r, _, accounts := newTestResolver()

	pinToken, _ := GeneratePinToken(testSecret, accounts.users[1], time.Hour)
	accounts.users[1].Role = models.RoleServer

	p := r.Resolve(context.Background(), "", pinToken)
	if p == nil {
		t.Fatal("expected principal")
	}
	if p.Role != models.RoleCashier {
		t.Fatalf("pin session must keep issuance-time role, got %s", p.Role)
	}
}
