package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/noticetake/push-relay/internal/storage/cache"
)

// --- Mocks ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockRealStore struct {
	mock.Mock
}

func (m *MockRealStore) Fetch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockRealStore) Save(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

const cacheKey = "pushrelay:hms:fallback_token"

func TestCachedStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache hit skips the real store", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)

		mockCache.On("Get", ctx, cacheKey).Return("cached-token", nil)

		token, err := store.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, "cached-token", token)
		mockDB.AssertNotCalled(t, "Fetch", mock.Anything)
	})

	t.Run("Cache miss reads through and populates", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)

		mockCache.On("Get", ctx, cacheKey).Return("", assert.AnError)
		mockDB.On("Fetch", ctx).Return("fresh-token", nil)
		mockCache.On("Set", ctx, cacheKey, "fresh-token", 1*time.Hour).Return(nil)

		token, err := store.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, "fresh-token", token)
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Populate failure is ignored", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)

		mockCache.On("Get", ctx, cacheKey).Return("", assert.AnError)
		mockDB.On("Fetch", ctx).Return("fresh-token", nil)
		mockCache.On("Set", ctx, cacheKey, "fresh-token", 1*time.Hour).Return(assert.AnError)

		token, err := store.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, "fresh-token", token)
	})

	t.Run("Save invalidates the cache immediately", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)

		mockDB.On("Save", ctx, "new-token").Return(nil)
		mockCache.On("Del", ctx, cacheKey).Return(nil)

		require.NoError(t, store.Save(ctx, "new-token"))
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Save failure skips invalidation", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)

		mockDB.On("Save", ctx, "new-token").Return(assert.AnError)

		require.Error(t, store.Save(ctx, "new-token"))
		mockCache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})
}
