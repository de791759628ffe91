package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
	"github.com/comitanigiacomo/habit-grid/internal/core/services"
)

type TrackingHandler struct {
	svc *services.TrackingService
}

func NewTrackingHandler(svc *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		svc: svc,
	}
}

type setTrackingRequest struct {
	HabitID   string `json:"habit_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Completed bool   `json:"completed"`
	Failed    *bool  `json:"failed"`
}

type advanceStateRequest struct {
	HabitID string `json:"habit_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	tracking := router.Group("/tracking")
	{
		tracking.POST("", h.Set)
		tracking.POST("/advance", h.Advance)
		tracking.GET("/:habitID", h.ListByHabit)
	}
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return d, nil
}

func (h *TrackingHandler) Set(c *gin.Context) {
	var req setTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.SetTracking(c.Request.Context(), services.SetTrackingInput{
		HabitID:   req.HabitID,
		Date:      date,
		Completed: req.Completed,
		Failed:    req.Failed,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *TrackingHandler) Advance(c *gin.Context) {
	var req advanceStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.AdvanceState(c.Request.Context(), req.HabitID, date)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":        rec.State().String(),
		"habit_id":     rec.HabitID,
		"date":         rec.Date.Format(domain.DateLayout),
		"completed":    rec.Completed,
		"failed":       rec.Failed,
		"streak_count": rec.StreakCount,
	})
}

func (h *TrackingHandler) ListByHabit(c *gin.Context) {
	habitID := c.Param("habitID")

	year, month, err := scopeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	list, err := h.svc.ListByHabit(c.Request.Context(), habitID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound) || errors.Is(err, domain.ErrTrackingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrDuplicateHabit):
		c.JSON(http.StatusConflict, gin.H{"error": "habit already exists"})

	case errors.Is(err, domain.ErrHabitNameEmpty),
		errors.Is(err, domain.ErrHabitNameTooLong),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrInvalidTracking):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
