package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

func setupTestCache(t *testing.T) *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func TestCachedHabitRepository_Integration(t *testing.T) {
	rdb := setupTestCache(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("List populates cache", func(t *testing.T) {
		rdb.FlushDB(ctx)

		inner := NewInMemoryHabitRepository()
		repo := NewCachedHabitRepository(inner, rdb)

		h, err := domain.NewHabit("Cached", "", 0, 1, 2026)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		list, err := repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)
		require.Len(t, list, 1)

		cached, err := rdb.Get(ctx, scopeKey(1, 2026)).Result()
		require.NoError(t, err)
		assert.Contains(t, cached, "Cached")
	})

	t.Run("Cache hit skips inner store", func(t *testing.T) {
		rdb.FlushDB(ctx)

		inner := NewInMemoryHabitRepository()
		repo := NewCachedHabitRepository(inner, rdb)

		h, err := domain.NewHabit("Warm", "", 0, 1, 2026)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		_, err = repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)

		// mutate the inner store behind the decorator's back: the cached
		// scope listing must still be served
		require.NoError(t, inner.Delete(ctx, h.ID))

		list, err := repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Writes invalidate the scope key", func(t *testing.T) {
		rdb.FlushDB(ctx)

		inner := NewInMemoryHabitRepository()
		repo := NewCachedHabitRepository(inner, rdb)

		h, err := domain.NewHabit("Volatile", "", 0, 1, 2026)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		_, err = repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)

		require.NoError(t, h.Update("Renamed", "", 0))
		require.NoError(t, repo.Update(ctx, h))

		_, err = rdb.Get(ctx, scopeKey(1, 2026)).Result()
		assert.ErrorIs(t, err, redis.Nil)

		list, err := repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Renamed", list[0].Name)
	})

	t.Run("Delete invalidates via lookup", func(t *testing.T) {
		rdb.FlushDB(ctx)

		inner := NewInMemoryHabitRepository()
		repo := NewCachedHabitRepository(inner, rdb)

		h, err := domain.NewHabit("Doomed", "", 0, 1, 2026)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		_, err = repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, h.ID))

		list, err := repo.ListByScope(ctx, 1, 2026)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
