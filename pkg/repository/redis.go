package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storehub/pkg/config"
	"github.com/go-redis/redis/v8"
)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// DelByPattern removes every key matching pattern using SCAN, not KEYS.
func (r *RedisRepository) DelByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// IsMiss reports whether err is a cache miss rather than a transport error.
func IsMiss(err error) bool {
	return err == redis.Nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Refresh tokens are opaque; the token value is the key, the session payload
// the value. Rotation deletes the old key and mints a new one.
type RefreshSession struct {
	SubjectID uint   `json:"subject_id"`
	Kind      string `json:"kind"`
	RoleID    uint   `json:"role_id"`
}

func refreshKey(token string) string {
	return fmt.Sprintf("refresh:%s", token)
}

func (r *RedisRepository) StoreRefreshSession(ctx context.Context, token string, sess *RefreshSession, ttl time.Duration) error {
	return r.SetJSON(ctx, refreshKey(token), sess, ttl)
}

func (r *RedisRepository) GetRefreshSession(ctx context.Context, token string) (*RefreshSession, error) {
	var sess RefreshSession
	if err := r.GetJSON(ctx, refreshKey(token), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *RedisRepository) DeleteRefreshSession(ctx context.Context, token string) error {
	return r.Del(ctx, refreshKey(token))
}
