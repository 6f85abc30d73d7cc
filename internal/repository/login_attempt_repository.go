package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/marketplace/internal/domain"
)

// ErrThrottleUnavailable is returned when no counter store is configured.
var ErrThrottleUnavailable = errors.New("login attempt store unavailable")

// LoginAttemptRepository counts failed logins per email inside a window.
type LoginAttemptRepository interface {
	Failures(ctx context.Context, email string) (int64, error)
	RecordFailure(ctx context.Context, email string, window time.Duration) (int64, error)
	Reset(ctx context.Context, email string) error
}

type loginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository returns a Redis-backed counter store. A nil
// client yields a store whose calls all fail with ErrThrottleUnavailable.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

func loginAttemptKey(email string) string {
	return "login:failures:" + domain.NormalizeEmail(email)
}

func (r *loginAttemptRepository) Failures(ctx context.Context, email string) (int64, error) {
	if r.client == nil {
		return 0, ErrThrottleUnavailable
	}
	n, err := r.client.Get(ctx, loginAttemptKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RecordFailure increments the counter. The window starts at the first
// failure and is not extended by later ones.
func (r *loginAttemptRepository) RecordFailure(ctx context.Context, email string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, ErrThrottleUnavailable
	}
	key := loginAttemptKey(email)

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, email string) error {
	if r.client == nil {
		return ErrThrottleUnavailable
	}
	return r.client.Del(ctx, loginAttemptKey(email)).Err()
}
