package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsNop(t *testing.T) {
	l, err := New(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, &NopLock{}, l)

	ok, err := l.TryLock(context.Background(), "daily-run", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Unlock(context.Background(), "daily-run"))
	assert.NoError(t, l.Close())
}

func TestNew_UnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, Config{Enabled: true, Redis: RedisConfig{Addr: "127.0.0.1:1"}})
	assert.Error(t, err)
}

func TestRedisLock_UnlockWithoutHold(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	l := NewRedisLock(client, "finsim:")
	defer l.Close()

	err := l.Unlock(context.Background(), "daily-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock not held")
}
