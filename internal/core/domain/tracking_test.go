package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayStateCycle(t *testing.T) {
	assert.Equal(t, StateCompleted, StatePending.Next())
	assert.Equal(t, StateFailed, StateCompleted.Next())
	assert.Equal(t, StatePending, StateFailed.Next())
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StatePending, StateOf(false, false))
	assert.Equal(t, StateCompleted, StateOf(true, false))
	assert.Equal(t, StateFailed, StateOf(false, true))
}

func TestDayStateFlags(t *testing.T) {
	tests := []struct {
		state         DayState
		wantCompleted bool
		wantFailed    bool
	}{
		{StatePending, false, false},
		{StateCompleted, true, false},
		{StateFailed, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.state.String(), func(t *testing.T) {
			completed, failed := tc.state.Flags()
			assert.Equal(t, tc.wantCompleted, completed)
			assert.Equal(t, tc.wantFailed, failed)

			// flags round-trip back to the same state
			assert.Equal(t, tc.state, StateOf(completed, failed))
		})
	}
}

func TestNewTrackingRecord(t *testing.T) {
	date := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)

	t.Run("Truncates date to day", func(t *testing.T) {
		rec, err := NewTrackingRecord("h1", date, true, false, 3)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), rec.Date)
		assert.Equal(t, StateCompleted, rec.State())
		assert.Equal(t, 3, rec.StreakCount)
	})

	t.Run("Rejects completed and failed together", func(t *testing.T) {
		_, err := NewTrackingRecord("h1", date, true, true, 0)
		assert.ErrorIs(t, err, ErrInvalidTracking)
	})
}

func TestComputeStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}
	completed := func(d int) *TrackingRecord {
		return &TrackingRecord{HabitID: "h1", Date: day(d), Completed: true}
	}
	failed := func(d int) *TrackingRecord {
		return &TrackingRecord{HabitID: "h1", Date: day(d), Failed: true}
	}

	t.Run("Three consecutive days", func(t *testing.T) {
		rows := []*TrackingRecord{completed(1), completed(2), completed(3)}

		assert.Equal(t, 3, ComputeStreak(day(3), rows))
	})

	t.Run("Absent day breaks the chain", func(t *testing.T) {
		rows := []*TrackingRecord{completed(1), completed(2), completed(3)}

		assert.Equal(t, 0, ComputeStreak(day(4), rows))
	})

	t.Run("Failed day breaks the chain", func(t *testing.T) {
		rows := []*TrackingRecord{completed(1), failed(2), completed(3), completed(4)}

		assert.Equal(t, 2, ComputeStreak(day(4), rows))
	})

	t.Run("Pending row counts as not completed", func(t *testing.T) {
		rows := []*TrackingRecord{completed(3), {HabitID: "h1", Date: day(4)}}

		assert.Equal(t, 0, ComputeStreak(day(4), rows))
	})

	t.Run("No history", func(t *testing.T) {
		assert.Equal(t, 0, ComputeStreak(day(10), nil))
	})

	t.Run("Crosses month boundary", func(t *testing.T) {
		rows := []*TrackingRecord{
			{HabitID: "h1", Date: time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC), Completed: true},
			{HabitID: "h1", Date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Completed: true},
			completed(1),
		}

		assert.Equal(t, 3, ComputeStreak(day(1), rows))
	})
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2026, 3, 10, 2, 30, 0, 0, loc)

	// 02:30 UTC+5 is still March 9 in UTC
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Day(ts))
}
