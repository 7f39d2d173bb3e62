package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// RedisLock is a SETNX lock with token-checked release.
type RedisLock struct {
	client redis.UniversalClient
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisLock returns a lock whose keys are prefix+key on client.
func NewRedisLock(client redis.UniversalClient, prefix string) *RedisLock {
	return &RedisLock{client: client, prefix: prefix, tokens: make(map[string]string)}
}

// TryLock sets key with a fresh token if absent and reports whether it won.
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		r.mu.Lock()
		r.tokens[key] = token
		r.mu.Unlock()
	}
	return ok, nil
}

// Unlock releases key only if it still holds the token set by TryLock.
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	r.mu.Lock()
	token, held := r.tokens[key]
	delete(r.tokens, key)
	r.mu.Unlock()
	if !held {
		return fmt.Errorf("lock not held: %s", key)
	}

	n, err := unlockScript.Run(ctx, r.client, []string{r.prefix + key}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis unlock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lock expired before release: %s", key)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisLock) Close() error {
	return r.client.Close()
}
