package handlers

import (
	"net/http"

	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Stats *services.StatsService
}

type statsResponse struct {
	Success bool `json:"success"`
	*services.DashboardStats
}

// GetStats returns the dashboard figures. ?refresh=true bypasses the cache.
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		h.Stats.Invalidate(ctx)
	}

	stats, err := h.Stats.GetDashboardStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{Success: true, DashboardStats: stats})
}
