package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitCacheTTL = 30 * time.Minute

// CachedHabitRepository is a cache-aside decorator over the scope listing,
// the query the dashboard hits on every request. Every write path
// invalidates the owning scope's key.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
	}
}

func scopeKey(month, year int) string {
	return fmt.Sprintf("habits:%04d-%02d", year, month)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, month, year int) {
	if err := r.cache.Del(ctx, scopeKey(month, year)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate scope %04d-%02d: %v", year, month, err)
	}
}

func (r *CachedHabitRepository) ListByScope(ctx context.Context, month, year int) ([]*domain.Habit, error) {
	key := scopeKey(month, year)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for scope %04d-%02d, cleaning up key", year, month)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListByScope(ctx, month, year)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, habitCacheTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.Month, habit.Year)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.Month, habit.Year)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.Month, habit.Year)
	}

	return r.next.Delete(ctx, id)
}
