package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kairos-hr/attendance-admin-api/internal/service"
	"github.com/kairos-hr/attendance-admin-api/pkg/response"
)

// DashboardHandler exposes dashboard read endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Dashboard headline counts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Calendar godoc
// @Summary Per-day leave counts for a month
// @Tags Dashboard
// @Produce json
// @Param month query string false "Month as yyyy-MM, defaults to current month"
// @Success 200 {object} response.Envelope
// @Router /dashboard/calendar [get]
func (h *DashboardHandler) Calendar(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	calendar, err := h.dashboard.Calendar(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}

// TodayRoster godoc
// @Summary Today's duty assignments
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/roster [get]
func (h *DashboardHandler) TodayRoster(c *gin.Context) {
	entries, err := h.dashboard.TodayRoster(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
