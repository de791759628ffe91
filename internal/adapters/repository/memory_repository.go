package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

// In-memory implementations backing tests and the storeless dev mode.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[habit.ID]; exists {
		return domain.ErrDuplicateHabit
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByScope(ctx context.Context, month, year int) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.Month == month && h.Year == year && h.IsActive {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryTrackingRepository struct {
	store map[string]*domain.TrackingRecord

	mu sync.RWMutex
}

func NewInMemoryTrackingRepository() *InMemoryTrackingRepository {
	return &InMemoryTrackingRepository{
		store: make(map[string]*domain.TrackingRecord),
	}
}

func trackingKey(habitID string, date time.Time) string {
	return habitID + "|" + domain.Day(date).Format(domain.DateLayout)
}

func (r *InMemoryTrackingRepository) Get(ctx context.Context, habitID string, date time.Time) (*domain.TrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[trackingKey(habitID, date)]
	if !ok {
		return nil, domain.ErrTrackingNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *InMemoryTrackingRepository) ListByHabitRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.TrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = domain.Day(from), domain.Day(to)

	var records []*domain.TrackingRecord
	for _, rec := range r.store {
		d := domain.Day(rec.Date)
		if rec.HabitID == habitID && !d.Before(from) && !d.After(to) {
			clone := *rec
			records = append(records, &clone)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return records, nil
}

func (r *InMemoryTrackingRepository) ListRange(ctx context.Context, from, to time.Time) ([]*domain.TrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = domain.Day(from), domain.Day(to)

	var records []*domain.TrackingRecord
	for _, rec := range r.store {
		d := domain.Day(rec.Date)
		if !d.Before(from) && !d.After(to) {
			clone := *rec
			records = append(records, &clone)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].HabitID != records[j].HabitID {
			return records[i].HabitID < records[j].HabitID
		}
		return records[i].Date.Before(records[j].Date)
	})

	return records, nil
}

func (r *InMemoryTrackingRepository) Upsert(ctx context.Context, rec *domain.TrackingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *rec
	clone.Date = domain.Day(rec.Date)
	r.store[trackingKey(rec.HabitID, rec.Date)] = &clone
	return nil
}
