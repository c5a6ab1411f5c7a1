package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSlotKey = "seller-connect:app-token"

// RedisSlot is a TokenSlot shared by every process pointing at the same Redis
// key. The key expires together with the token.
type RedisSlot struct {
	client  redis.UniversalClient
	key     string
	nowFunc func() time.Time
}

// NewRedisSlot creates a RedisSlot. An empty key selects the default.
func NewRedisSlot(client redis.UniversalClient, key string) *RedisSlot {
	if key == "" {
		key = defaultSlotKey
	}
	return &RedisSlot{client: client, key: key, nowFunc: time.Now}
}

// Load returns the stored token, or nil when the key is absent.
func (r *RedisSlot) Load(ctx context.Context) (*AppToken, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading app token from redis: %w", err)
	}

	var t AppToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding app token from redis: %w", err)
	}
	return &t, nil
}

// Store writes t with a TTL matching its remaining lifetime.
func (r *RedisSlot) Store(ctx context.Context, t *AppToken) error {
	ttl := t.ExpiresAt.Sub(r.nowFunc())
	if ttl <= 0 {
		return r.Clear(ctx)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding app token: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing app token to redis: %w", err)
	}
	return nil
}

// Clear deletes the key.
func (r *RedisSlot) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("deleting app token from redis: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (r *RedisSlot) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}
