package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

type PostgresTrackingRepository struct {
	db *sqlx.DB
}

func NewPostgresTrackingRepository(db *sqlx.DB) *PostgresTrackingRepository {
	return &PostgresTrackingRepository{db: db}
}

func (r *PostgresTrackingRepository) Get(ctx context.Context, habitID string, date time.Time) (*domain.TrackingRecord, error) {
	var rec domain.TrackingRecord
	query := `SELECT * FROM habit_tracking WHERE habit_id = $1 AND date = $2`

	err := r.db.GetContext(ctx, &rec, query, habitID, domain.Day(date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresTrackingRepository) ListByHabitRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.TrackingRecord, error) {
	records := []*domain.TrackingRecord{}

	query := `
		SELECT * FROM habit_tracking
		WHERE habit_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &records, query, habitID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresTrackingRepository) ListRange(ctx context.Context, from, to time.Time) ([]*domain.TrackingRecord, error) {
	records := []*domain.TrackingRecord{}

	query := `
		SELECT * FROM habit_tracking
		WHERE date >= $1 AND date <= $2
		ORDER BY habit_id, date ASC`

	err := r.db.SelectContext(ctx, &records, query, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert relies on the (habit_id, date) primary key: the row-level
// conflict resolution in Postgres is what makes concurrent writes to the
// same cell last-writer-wins instead of erroring.
func (r *PostgresTrackingRepository) Upsert(ctx context.Context, rec *domain.TrackingRecord) error {
	query := `
		INSERT INTO habit_tracking (habit_id, date, completed, failed, streak_count)
		VALUES (:habit_id, :date, :completed, :failed, :streak_count)
		ON CONFLICT (habit_id, date) DO UPDATE SET
			completed = EXCLUDED.completed,
			failed = EXCLUDED.failed,
			streak_count = EXCLUDED.streak_count`

	_, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("tracking upsert failed: %w", err)
	}
	return nil
}
