// Package cache adds Redis read-aside caching over a fallback-token store.
package cache

import (
	"context"
	"time"

	"github.com/noticetake/push-relay/pkg/push"
)

// CacheClient defines the subset of Redis commands we need. The cache
// holds a single token string per key.
type CacheClient interface {
	// Get returns the value or an error if not found.
	Get(ctx context.Context, key string) (string, error)
	// Set stores the value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes the key.
	Del(ctx context.Context, key string) error
}

const cacheKey = "pushrelay:hms:fallback_token"

// CachedTokenStore is a Decorator that adds read-aside caching to any
// FallbackTokenStore.
type CachedTokenStore struct {
	realStore push.FallbackTokenStore
	cache     CacheClient
	ttl       time.Duration
}

func NewCachedTokenStore(realStore push.FallbackTokenStore, cache CacheClient, ttl time.Duration) *CachedTokenStore {
	return &CachedTokenStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
	}
}

// Fetch tries the cache first, falling back to the real store. Caching is
// an optimization, not a transaction: populate failures are ignored.
func (s *CachedTokenStore) Fetch(ctx context.Context) (string, error) {
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		return cached, nil
	}

	fresh, err := s.realStore.Fetch(ctx)
	if err != nil {
		return "", err
	}

	_ = s.cache.Set(ctx, cacheKey, fresh, s.ttl)
	return fresh, nil
}

// Save writes to the source of truth, then invalidates the cache so the
// next Fetch sees the new token immediately.
func (s *CachedTokenStore) Save(ctx context.Context, token string) error {
	if err := s.realStore.Save(ctx, token); err != nil {
		return err
	}
	return s.cache.Del(ctx, cacheKey)
}
