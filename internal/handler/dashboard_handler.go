package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retainhq/retain-backend/internal/middleware"
	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
)

// DashboardHandler serves the admin dashboard snapshot.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// GET /api/v1/dashboard
// Returns aggregate statistics for the authenticated admin's students.
// Snapshots are cached briefly, so very recent changes may lag.
func (h *DashboardHandler) Get(c *gin.Context) {
	adminID := middleware.GetAdminID(c)

	data, err := h.dashboardService.GetDashboard(c.Request.Context(), adminID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, data)
}
