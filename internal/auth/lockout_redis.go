package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrLockoutUnavailable sayaç backend'ine ulaşılamadığında döner.
var ErrLockoutUnavailable = errors.New("lockout backend ulaşılamıyor")

// RedisLockoutTracker sayaçları Redis'te tutar; birden fazla sunucu
// instance'ı aynı deneme bütçesini paylaşır. INCR + ilk denemede EXPIRE,
// pencere TTL ile kendiliğinden sıfırlanır.
type RedisLockoutTracker struct {
	client   redis.UniversalClient
	policies LockoutPolicies
}

func NewRedisLockoutTracker(client redis.UniversalClient, policies LockoutPolicies) *RedisLockoutTracker {
	return &RedisLockoutTracker{client: client, policies: policies}
}

func redisLockoutKey(key string, mode LockoutMode) string {
	return "lockout:" + string(mode) + ":" + key
}

func (t *RedisLockoutTracker) Check(ctx context.Context, key string, mode LockoutMode) (LockoutStatus, error) {
	policy := t.policies.forMode(mode)
	k := redisLockoutKey(key, mode)

	count, err := t.client.Get(ctx, k).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return LockoutStatus{}, nil
		}
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}

	if count < int64(policy.MaxAttempts) {
		return LockoutStatus{}, nil
	}

	ttl, err := t.client.PTTL(ctx, k).Result()
	if err != nil {
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if ttl <= 0 {
		// TTL düşmüş, anahtar birazdan silinir
		return LockoutStatus{}, nil
	}
	return LockoutStatus{Locked: true, RetryAfter: ttl}, nil
}

func (t *RedisLockoutTracker) RecordFailure(ctx context.Context, key string, mode LockoutMode) error {
	policy := t.policies.forMode(mode)
	k := redisLockoutKey(key, mode)

	count, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, k, policy.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
	}
	return nil
}

func (t *RedisLockoutTracker) Reset(ctx context.Context, key string, mode LockoutMode) error {
	if err := t.client.Del(ctx, redisLockoutKey(key, mode)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

var _ LockoutTracker = (*MemoryLockoutTracker)(nil)
var _ LockoutTracker = (*RedisLockoutTracker)(nil)
