package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	keys    map[string]time.Duration
	failing error
}

func newFakeKV() *fakeKV {
	return &fakeKV{keys: map[string]time.Duration{}}
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failing != nil {
		return redis.NewIntResult(0, f.failing)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRevokeThenIsRevoked(t *testing.T) {
	kv := newFakeKV()
	store := newRevocationStore(kv)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))
	assert.Equal(t, time.Minute, kv.keys["revoked:jti-1"])

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevoke_ExpiredTokenIsNotStored(t *testing.T) {
	kv := newFakeKV()
	store := newRevocationStore(kv)

	require.NoError(t, store.Revoke(context.Background(), "jti-2", 0))
	assert.Empty(t, kv.keys)
}

func TestRevocationStore_PropagatesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.failing = errors.New("connection refused")
	store := newRevocationStore(kv)
	ctx := context.Background()

	require.Error(t, store.Revoke(ctx, "jti", time.Minute))
	_, err := store.IsRevoked(ctx, "jti")
	require.Error(t, err)
	assert.NoError(t, store.Close())
}
