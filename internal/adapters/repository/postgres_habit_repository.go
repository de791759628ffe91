package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, name, goal, color, sort_order,
            month, year, is_active, created_at, updated_at
        ) VALUES (
            :id, :name, :goal, :color, :sort_order,
            :month, :year, :is_active, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateHabit
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	query := `SELECT * FROM habits WHERE id = $1`

	err := r.db.GetContext(ctx, &h, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByScope(ctx context.Context, month, year int) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}

	query := `
        SELECT * FROM habits
        WHERE month = $1 AND year = $2 AND is_active = TRUE
        ORDER BY sort_order ASC, created_at ASC`

	if err := r.db.SelectContext(ctx, &habits, query, month, year); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name = :name, goal = :goal, color = :color,
            sort_order = :sort_order, is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, h)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// Delete removes only the habit row. Tracking rows are deliberately left
// behind; aggregations are habit-driven so orphaned rows never surface.
func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
