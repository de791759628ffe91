package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty   = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong = errors.New("habit name is too long (max 255 chars)")
	ErrInvalidColor     = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidGoal      = errors.New("goal cannot be negative")
	ErrInvalidScope     = errors.New("invalid habit scope (month must be 1-12)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultGoal  = 30
	DefaultColor = "#00ff00"
	MaxNameLen   = 255
)

// Habit is a trackable behavior scoped to a single (month, year).
type Habit struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Goal      int       `json:"goal" db:"goal"`
	Color     string    `json:"color" db:"color"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Month     int       `json:"month" db:"month"`
	Year      int       `json:"year" db:"year"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateHabit(name, color string, goal, month int) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrHabitNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if goal < 0 {
		return ErrInvalidGoal
	}
	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}
	if month < 1 || month > 12 {
		return ErrInvalidScope
	}
	return nil
}

func NewHabit(name, color string, goal, month, year int) (*Habit, error) {
	if err := validateHabit(name, color, goal, month); err != nil {
		return nil, err
	}

	if goal == 0 {
		goal = DefaultGoal
	}
	if color == "" {
		color = DefaultColor
	}

	now := time.Now().UTC()

	return &Habit{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Goal:      goal,
		Color:     color,
		Month:     month,
		Year:      year,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update renames the habit and adjusts its goal/color. Scope is immutable:
// a habit belongs to the month it was created for.
func (h *Habit) Update(name, color string, goal int) error {
	if err := validateHabit(name, color, goal, h.Month); err != nil {
		return err
	}

	if goal == 0 {
		goal = h.Goal
	}
	if color == "" {
		color = h.Color
	}

	h.Name = strings.TrimSpace(name)
	h.Goal = goal
	h.Color = color
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) {
	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Deactivate() {
	if !h.IsActive {
		return
	}
	h.IsActive = false
	h.UpdatedAt = time.Now().UTC()
}
