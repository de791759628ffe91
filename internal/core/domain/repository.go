package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound  = errors.New("habit not found")
	ErrDuplicateHabit = errors.New("habit already exists")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByScope retrieves all active habits for a (month, year) pair,
	// ordered by sort order.
	ListByScope(ctx context.Context, month, year int) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete removes a habit from the registry. Tracking rows for the
	// habit are retained for historical accuracy; they simply stop
	// appearing in aggregations once the habit is gone.
	Delete(ctx context.Context, id string) error
}
