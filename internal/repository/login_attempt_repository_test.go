package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisRepo(t *testing.T) (LoginAttemptRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginAttemptRepository(client), mr
}

func TestLoginAttemptsCountAndExpire(t *testing.T) {
	repo, mr := newMiniredisRepo(t)
	ctx := context.Background()

	n, err := repo.Failures(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err = repo.RecordFailure(ctx, "A@example.com ", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	n, err = repo.Failures(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Minute, mr.TTL(loginAttemptKey("a@example.com")))

	mr.FastForward(time.Minute + time.Second)
	n, err = repo.Failures(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginAttemptsReset(t *testing.T) {
	repo, _ := newMiniredisRepo(t)
	ctx := context.Background()

	_, err := repo.RecordFailure(ctx, "b@example.com", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.Reset(ctx, "b@example.com"))

	n, err := repo.Failures(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginAttemptsWithoutClient(t *testing.T) {
	repo := NewLoginAttemptRepository(nil)
	_, err := repo.Failures(context.Background(), "c@example.com")
	assert.ErrorIs(t, err, ErrThrottleUnavailable)
}

func TestLoginAttemptsServerDown(t *testing.T) {
	repo, mr := newMiniredisRepo(t)
	mr.Close()
	_, err := repo.RecordFailure(context.Background(), "d@example.com", time.Minute)
	assert.Error(t, err)
}
