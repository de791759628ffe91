package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTrackingNotFound = errors.New("tracking record not found")
)

type TrackingRepository interface {
	// Get retrieves the record for one (habit, date) cell.
	// Returns ErrTrackingNotFound when the cell has never been written;
	// callers treat that as pending.
	Get(ctx context.Context, habitID string, date time.Time) (*TrackingRecord, error)

	// ListByHabitRange retrieves a habit's records with from <= date <= to.
	// The range is not clamped to a month: streak computation reads across
	// month boundaries.
	ListByHabitRange(ctx context.Context, habitID string, from, to time.Time) ([]*TrackingRecord, error)

	// ListRange retrieves records for all habits in the date range, for
	// whole-month dashboard reads in a single query.
	ListRange(ctx context.Context, from, to time.Time) ([]*TrackingRecord, error)

	// Upsert writes the record, replacing any existing row for the same
	// (habit, date) key.
	Upsert(ctx context.Context, record *TrackingRecord) error
}
