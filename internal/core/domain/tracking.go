package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidTracking = errors.New("tracking record cannot be both completed and failed")
)

const DateLayout = "2006-01-02"

// DayState is the display state of one (habit, date) cell, derived from
// the (completed, failed) flag pair.
type DayState int

const (
	StatePending DayState = iota
	StateCompleted
	StateFailed
)

func (s DayState) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Next returns the successor in the fixed toggle cycle
// pending -> completed -> failed -> pending.
func (s DayState) Next() DayState {
	return (s + 1) % 3
}

// Flags projects the state back onto the persisted flag pair.
func (s DayState) Flags() (completed, failed bool) {
	switch s {
	case StateCompleted:
		return true, false
	case StateFailed:
		return false, true
	default:
		return false, false
	}
}

func StateOf(completed, failed bool) DayState {
	switch {
	case completed:
		return StateCompleted
	case failed:
		return StateFailed
	default:
		return StatePending
	}
}

// TrackingRecord is the persisted status of one habit on one date.
// (HabitID, Date) is the composite key; rows are created lazily, so a
// missing row means pending with no streak.
type TrackingRecord struct {
	HabitID     string    `json:"habit_id" db:"habit_id"`
	Date        time.Time `json:"date" db:"date"`
	Completed   bool      `json:"completed" db:"completed"`
	Failed      bool      `json:"failed" db:"failed"`
	StreakCount int       `json:"streak_count" db:"streak_count"`
}

func NewTrackingRecord(habitID string, date time.Time, completed, failed bool, streak int) (*TrackingRecord, error) {
	if completed && failed {
		return nil, ErrInvalidTracking
	}
	return &TrackingRecord{
		HabitID:     habitID,
		Date:        Day(date),
		Completed:   completed,
		Failed:      failed,
		StreakCount: streak,
	}, nil
}

func (r *TrackingRecord) State() DayState {
	return StateOf(r.Completed, r.Failed)
}

// Day truncates a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeStreak counts consecutive completed days ending at asOf, walking
// backward one day at a time. A missing row, a pending row, or a failed row
// breaks the chain. rows may span any date range, including prior months.
func ComputeStreak(asOf time.Time, rows []*TrackingRecord) int {
	byDate := make(map[string]*TrackingRecord, len(rows))
	for _, r := range rows {
		byDate[Day(r.Date).Format(DateLayout)] = r
	}

	streak := 0
	cursor := Day(asOf)
	for {
		rec, ok := byDate[cursor.Format(DateLayout)]
		if !ok || !rec.Completed {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}
