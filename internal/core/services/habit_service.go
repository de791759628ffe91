package services

import (
	"context"
	"log"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	Name  string
	Goal  int
	Color string
	Month int
	Year  int
}

type UpdateHabitInput struct {
	ID    string
	Name  string
	Goal  int
	Color string
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.Name, input.Color, input.Goal, input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	// Append at the end of the month's list.
	existing, err := s.repo.ListByScope(ctx, input.Month, input.Year)
	if err != nil {
		return nil, err
	}
	habit.SortOrder = len(existing)

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByScope(ctx context.Context, month, year int) ([]*domain.Habit, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidScope
	}
	return s.repo.ListByScope(ctx, month, year)
}

func (s *HabitService) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	name := mergeString(input.Name, habit.Name)
	color := mergeString(input.Color, habit.Color)

	if err := habit.Update(name, color, input.Goal); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// Delete removes the habit definition only. Historical tracking rows stay
// in the store; aggregation never sees them again because it walks habits
// first.
func (s *HabitService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SeedDefaults installs a starter habit list for the given month when the
// registry is empty. Errors on individual habits are logged and skipped so
// a partial seed does not abort startup.
func (s *HabitService) SeedDefaults(ctx context.Context, month, year int) error {
	existing, err := s.repo.ListByScope(ctx, month, year)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []string{
		"Wake up without snoozing",
		"Read 60 minutes",
		"Workout 30 minutes",
		"Write 1 page journal",
		"Sleep before midnight",
	}

	for i, name := range defaults {
		habit, err := domain.NewHabit(name, domain.DefaultColor, domain.DefaultGoal, month, year)
		if err != nil {
			log.Printf("Seed: skipping %q: %v", name, err)
			continue
		}
		habit.SortOrder = i
		if err := s.repo.Create(ctx, habit); err != nil {
			log.Printf("Seed: failed to insert %q: %v", name, err)
		}
	}

	return nil
}
