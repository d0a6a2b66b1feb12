// Package redisstore keeps revoked token ids in Redis until the token would
// have expired anyway.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hongminglow/dbgate/internal/storage"
)

var _ storage.RevocationStore = (*RevocationStore)(nil)

const keyPrefix = "revoked:"

type keyValue interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type RevocationStore struct {
	client keyValue
	closer func() error
}

// Connect parses a redis:// URL, pings the server and returns a store backed by it.
func Connect(ctx context.Context, url string) (*RevocationStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RevocationStore{client: client, closer: client.Close}, nil
}

func newRevocationStore(client keyValue) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke marks tokenID as revoked for ttl. Non-positive ttl means the token
// is already expired and nothing is stored.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
