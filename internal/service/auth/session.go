package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	userKeySuffix  = "auth_user"
	tokenKeySuffix = "auth_token"
	handoffSuffix  = "new_patient_signup"
)

func sessionKey(token, suffix string) string {
	return fmt.Sprintf("session:%s:%s", token, suffix)
}

func handoffKey(userID string) string {
	return fmt.Sprintf("signup:%s:%s", userID, handoffSuffix)
}

// SessionStorage is the key-value store behind sessions and signup handoffs.
// Get returns ErrSessionNotFound for a missing or expired key.
type SessionStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type cacheStorage struct {
	c *cache.Cache
}

// NewCacheStorage keeps sessions in process memory.
func NewCacheStorage(defaultTTL, cleanupInterval time.Duration) SessionStorage {
	return &cacheStorage{c: cache.New(defaultTTL, cleanupInterval)}
}

func (s *cacheStorage) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, ErrSessionNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected session value type %T", v)
	}
	return append([]byte(nil), b...), nil
}

func (s *cacheStorage) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (s *cacheStorage) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.c.Delete(key)
	}
	return nil
}

type redisStorage struct {
	client *redis.Client
}

// NewRedisStorage keeps sessions in redis so several API replicas share them.
func NewRedisStorage(client *redis.Client) SessionStorage {
	return &redisStorage{client: client}
}

func (s *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return b, nil
}

func (s *redisStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
