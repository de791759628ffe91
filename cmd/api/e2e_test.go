package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/habit-grid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
	"github.com/comitanigiacomo/habit-grid/internal/core/services"
	"github.com/comitanigiacomo/habit-grid/internal/core/workers"
)

type e2eStack struct {
	router       *gin.Engine
	habitRepo    *repository.InMemoryHabitRepository
	trackingRepo *repository.InMemoryTrackingRepository
	sweep        *workers.FailureSweep
}

// newE2EStack wires the whole service over in-memory stores, the same
// composition main falls back to when no database is configured.
func newE2EStack() *e2eStack {
	gin.SetMode(gin.TestMode)

	habitRepo := repository.NewInMemoryHabitRepository()
	trackingRepo := repository.NewInMemoryTrackingRepository()

	habitService := services.NewHabitService(habitRepo)
	trackingService := services.NewTrackingService(trackingRepo, habitRepo)
	dashboardService := services.NewDashboardService(habitRepo, trackingRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService),
		TrackingHandler:  adapterHTTP.NewTrackingHandler(trackingService),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardService),
		StartTime:        time.Now(),
	})

	return &e2eStack{
		router:       router,
		habitRepo:    habitRepo,
		trackingRepo: trackingRepo,
		sweep:        workers.NewFailureSweep(habitRepo, trackingRepo, &services.LogNotifier{}),
	}
}

func (s *e2eStack) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_MonthLifecycle(t *testing.T) {
	stack := newE2EStack()

	var habitID string

	t.Run("1. Health", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"in-memory"`)
	})

	t.Run("2. Create Habit", func(t *testing.T) {
		w := stack.do(t, http.MethodPost, "/api/v1/habits",
			`{"name": "Morning Run", "goal": 25, "month": 1, "year": 2026}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		require.NotEmpty(t, habit.ID)
		habitID = habit.ID
	})

	t.Run("3. Advance Day To Completed", func(t *testing.T) {
		w := stack.do(t, http.MethodPost, "/api/v1/tracking/advance",
			`{"habit_id": "`+habitID+`", "date": "2026-01-05"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"state":"completed"`)
	})

	t.Run("4. Dashboard Reflects Completion", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/dashboard?year=2026&month=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var snap domain.DashboardSnapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

		require.Len(t, snap.Habits, 1)
		assert.Equal(t, 1, snap.Habits[0].MonthCompleted)
		assert.True(t, snap.Habits[0].Tracking[4].Completed)
		// overall goal is habits x days in month, not the habit's own goal
		assert.Equal(t, 1, snap.Overall.Completed)
		assert.Equal(t, 31, snap.Overall.Goal)
		assert.Equal(t, 30, snap.Overall.Left)
	})

	t.Run("5. Sweep Fails The Untracked Backlog", func(t *testing.T) {
		asOf := time.Date(2026, 1, 8, 6, 30, 0, 0, time.UTC)
		require.NoError(t, stack.sweep.Run(context.Background(), asOf))

		w := stack.do(t, http.MethodGet, "/api/v1/dashboard?year=2026&month=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var snap domain.DashboardSnapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

		cells := snap.Habits[0].Tracking
		assert.True(t, cells[0].Failed, "Jan 1 was never tracked")
		assert.True(t, cells[4].Completed, "completed day must survive the sweep")
		assert.False(t, cells[7].Failed, "today is untouched")
		assert.Equal(t, 1, snap.Habits[0].MonthCompleted)
	})

	t.Run("6. Cycle Back To Pending", func(t *testing.T) {
		for _, want := range []string{"failed", "pending"} {
			w := stack.do(t, http.MethodPost, "/api/v1/tracking/advance",
				`{"habit_id": "`+habitID+`", "date": "2026-01-05"}`)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"state":"`+want+`"`)
		}
	})

	t.Run("7. Delete Habit Keeps History", func(t *testing.T) {
		w := stack.do(t, http.MethodDelete, "/api/v1/habits/"+habitID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		rows, err := stack.trackingRepo.ListByHabitRange(context.Background(), habitID,
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	})

	t.Run("8. Validation Error", func(t *testing.T) {
		w := stack.do(t, http.MethodPost, "/api/v1/habits", `{"goal": 10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
