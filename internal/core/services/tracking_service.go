package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

type TrackingService struct {
	repo      domain.TrackingRepository
	habitRepo domain.HabitRepository

	// cellLocks serializes read-modify-write cycles per (habit, date) so
	// two concurrent toggles on the same cell cannot lose an update.
	cellLocks sync.Map
}

func NewTrackingService(repo domain.TrackingRepository, habitRepo domain.HabitRepository) *TrackingService {
	return &TrackingService{
		repo:      repo,
		habitRepo: habitRepo,
	}
}

type SetTrackingInput struct {
	HabitID   string
	Date      time.Time
	Completed bool
	Failed    *bool
}

func (s *TrackingService) lockCell(habitID string, date time.Time) *sync.Mutex {
	key := habitID + "|" + domain.Day(date).Format(domain.DateLayout)
	mu, _ := s.cellLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AdvanceState moves one cell a single step through the toggle cycle
// pending -> completed -> failed -> pending and persists the result.
// An absent row counts as pending. Every cell is user-editable on any
// date; a toggle deliberately overrides an automatic failure mark.
func (s *TrackingService) AdvanceState(ctx context.Context, habitID string, date time.Time) (*domain.TrackingRecord, error) {
	if _, err := s.habitRepo.GetByID(ctx, habitID); err != nil {
		return nil, err
	}

	mu := s.lockCell(habitID, date)
	mu.Lock()
	defer mu.Unlock()

	current := domain.StatePending
	rec, err := s.repo.Get(ctx, habitID, date)
	switch {
	case err == nil:
		current = rec.State()
	case errors.Is(err, domain.ErrTrackingNotFound):
		// lazily created cell, starts pending
	default:
		return nil, fmt.Errorf("advance state: reading cell: %w", err)
	}

	next := current.Next()
	completed, failed := next.Flags()

	streak := 0
	if completed {
		streak = s.streakThrough(ctx, habitID, date)
	}

	updated, err := domain.NewTrackingRecord(habitID, date, completed, failed, streak)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("advance state: persisting cell: %w", err)
	}

	return updated, nil
}

// SetTracking writes an explicit (completed, failed) pair for one cell.
// When failed is not provided it is derived as the inverse of completed,
// matching the toggle endpoint's historical behavior.
func (s *TrackingService) SetTracking(ctx context.Context, input SetTrackingInput) (*domain.TrackingRecord, error) {
	if _, err := s.habitRepo.GetByID(ctx, input.HabitID); err != nil {
		return nil, err
	}

	failed := !input.Completed
	if input.Failed != nil {
		failed = *input.Failed
	}

	mu := s.lockCell(input.HabitID, input.Date)
	mu.Lock()
	defer mu.Unlock()

	streak := 0
	if input.Completed {
		streak = s.streakThrough(ctx, input.HabitID, input.Date)
	}

	rec, err := domain.NewTrackingRecord(input.HabitID, input.Date, input.Completed, failed, streak)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("set tracking: %w", err)
	}

	return rec, nil
}

func (s *TrackingService) ListByHabit(ctx context.Context, habitID string, from, to time.Time) ([]*domain.TrackingRecord, error) {
	if _, err := s.habitRepo.GetByID(ctx, habitID); err != nil {
		return nil, err
	}
	return s.repo.ListByHabitRange(ctx, habitID, from, to)
}

// streakThrough reads yesterday's row and extends its streak by one, the
// stored-streak convention of the tracking table. A missing row means the
// streak starts at 1. A real storage error also yields 1 so the toggle
// still lands, but it is logged rather than swallowed.
func (s *TrackingService) streakThrough(ctx context.Context, habitID string, date time.Time) int {
	yesterday := domain.Day(date).AddDate(0, 0, -1)
	prev, err := s.repo.Get(ctx, habitID, yesterday)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackingNotFound) {
			log.Printf("Streak: reading %s for habit %s failed, starting at 1: %v",
				yesterday.Format(domain.DateLayout), habitID, err)
		}
		return 1
	}
	if !prev.Completed {
		return 1
	}
	return prev.StreakCount + 1
}
