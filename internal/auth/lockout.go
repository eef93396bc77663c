package auth

import (
	"context"
	"sync"
	"time"
)

type LockoutMode string

const (
	LockoutModePassword LockoutMode = "password"
	LockoutModePin      LockoutMode = "pin"
)

type LockoutStatus struct {
	Locked     bool
	RetryAfter time.Duration
}

type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// LockoutPolicies şifre ve PIN için ayrı eşikler tutar. PIN daha katı
// (daha az deneme, daha kısa pencere).
type LockoutPolicies struct {
	Password LockoutPolicy
	Pin      LockoutPolicy
}

func (p LockoutPolicies) forMode(mode LockoutMode) LockoutPolicy {
	if mode == LockoutModePin {
		return p.Pin
	}
	return p.Password
}

// LockoutTracker başarısız giriş denemelerini sayar. Key serbest metin:
// login için email, kilit açma için "unlock:<userID>" gibi. Check deneme
// saymaz, sadece okur.
type LockoutTracker interface {
	Check(ctx context.Context, key string, mode LockoutMode) (LockoutStatus, error)
	RecordFailure(ctx context.Context, key string, mode LockoutMode) error
	Reset(ctx context.Context, key string, mode LockoutMode) error
}

type lockoutRecord struct {
	count   int
	firstAt time.Time
}

// MemoryLockoutTracker süreç içi sayaç. Tek instance için yeterli;
// birden fazla instance'da her süreç kendi bütçesini tutar, paylaşımlı
// takip için RedisLockoutTracker kullanılır.
type MemoryLockoutTracker struct {
	policies LockoutPolicies

	mu      sync.Mutex
	records map[string]*lockoutRecord

	now func() time.Time
}

func NewMemoryLockoutTracker(policies LockoutPolicies) *MemoryLockoutTracker {
	return &MemoryLockoutTracker{
		policies: policies,
		records:  make(map[string]*lockoutRecord),
		now:      time.Now,
	}
}

func lockoutKey(key string, mode LockoutMode) string {
	return string(mode) + ":" + key
}

func (t *MemoryLockoutTracker) Check(_ context.Context, key string, mode LockoutMode) (LockoutStatus, error) {
	policy := t.policies.forMode(mode)

	t.mu.Lock()
	defer t.mu.Unlock()

	k := lockoutKey(key, mode)
	rec, ok := t.records[k]
	if !ok {
		return LockoutStatus{}, nil
	}

	now := t.now()
	expiresAt := rec.firstAt.Add(policy.Window)
	if !now.Before(expiresAt) {
		// Pencere doldu, kayıt geçersiz
		delete(t.records, k)
		return LockoutStatus{}, nil
	}

	if rec.count >= policy.MaxAttempts {
		return LockoutStatus{Locked: true, RetryAfter: expiresAt.Sub(now)}, nil
	}
	return LockoutStatus{}, nil
}

func (t *MemoryLockoutTracker) RecordFailure(_ context.Context, key string, mode LockoutMode) error {
	policy := t.policies.forMode(mode)

	t.mu.Lock()
	defer t.mu.Unlock()

	k := lockoutKey(key, mode)
	now := t.now()

	rec, ok := t.records[k]
	if !ok || !now.Before(rec.firstAt.Add(policy.Window)) {
		t.records[k] = &lockoutRecord{count: 1, firstAt: now}
		return nil
	}
	rec.count++
	return nil
}

func (t *MemoryLockoutTracker) Reset(_ context.Context, key string, mode LockoutMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, lockoutKey(key, mode))
	return nil
}
