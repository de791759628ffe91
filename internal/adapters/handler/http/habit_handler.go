package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-grid/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Name  string `json:"name" binding:"required"`
	Goal  int    `json:"goal"`
	Color string `json:"color"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

type updateHabitRequest struct {
	Name  string `json:"name"`
	Goal  int    `json:"goal"`
	Color string `json:"color"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

// scopeQuery reads ?year= and ?month=, defaulting to the current month.
func scopeQuery(c *gin.Context) (year, month int, err error) {
	now := time.Now().UTC()
	year, month = now.Year(), int(now.Month())

	if y := c.Query("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil {
			return 0, 0, errors.New("invalid year")
		}
	}
	if m := c.Query("month"); m != "" {
		month, err = strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, errors.New("invalid month, expected 1-12")
		}
	}
	return year, month, nil
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Month == 0 || req.Year == 0 {
		now := time.Now().UTC()
		if req.Month == 0 {
			req.Month = int(now.Month())
		}
		if req.Year == 0 {
			req.Year = now.Year()
		}
	}

	input := services.CreateHabitInput{
		Name:  req.Name,
		Goal:  req.Goal,
		Color: req.Color,
		Month: req.Month,
		Year:  req.Year,
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	year, month, err := scopeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.svc.ListByScope(c.Request.Context(), month, year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:    id,
		Name:  req.Name,
		Goal:  req.Goal,
		Color: req.Color,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
