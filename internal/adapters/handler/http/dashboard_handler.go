package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-grid/internal/core/services"
)

type DashboardHandler struct {
	svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	year, month, err := scopeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.svc.GetDashboard(c.Request.Context(), year, month)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMonth) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month out of range, expected 1-12"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
