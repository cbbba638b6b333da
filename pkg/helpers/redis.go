package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// keyOAuthState is the Redis key for a pending OAuth authorization round-trip.
func keyOAuthState(state string) string {
	return "oauth:state:" + state
}

// StoreOAuthState records the anti-CSRF state value server-side for one
// authorization round-trip.
func StoreOAuthState(ctx context.Context, rdb *redis.Client, state string, ttl time.Duration) error {
	return rdb.Set(ctx, keyOAuthState(state), "1", ttl).Err()
}

// ConsumeOAuthState atomically checks and deletes the state value so it can
// only be redeemed once. Returns false for unknown or expired states.
func ConsumeOAuthState(ctx context.Context, rdb *redis.Client, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, err := rdb.GetDel(ctx, keyOAuthState(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
