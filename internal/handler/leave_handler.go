package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	"github.com/kairos-hr/attendance-admin-api/internal/service"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
	"github.com/kairos-hr/attendance-admin-api/pkg/response"
)

// LeaveHandler exposes leave plan endpoints.
type LeaveHandler struct {
	leaves *service.LeaveService
}

// NewLeaveHandler constructs LeaveHandler.
func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// List godoc
// @Summary List leave plans
// @Tags Leave
// @Produce json
// @Param employeeId query string false "Filter by employee"
// @Param type query string false "Filter by leave type"
// @Param startDate query string false "Overlap window start yyyy-MM-dd"
// @Param endDate query string false "Overlap window end yyyy-MM-dd"
// @Success 200 {object} response.Envelope
// @Router /leave-plans [get]
func (h *LeaveHandler) List(c *gin.Context) {
	leaveType := models.LeaveType(c.Query("type"))
	if leaveType != "" && !leaveType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown leave type"))
		return
	}
	plans, err := h.leaves.List(c.Request.Context(), c.Query("employeeId"), leaveType, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Create godoc
// @Summary Create leave plan
// @Description Enforces the per-employee plan limit and annual quota per leave type
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body service.CreateLeavePlanRequest true "Leave plan payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leave-plans [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	var req service.CreateLeavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.leaves.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Delete godoc
// @Summary Delete leave plan
// @Tags Leave
// @Produce json
// @Param id path string true "Leave plan ID"
// @Success 204 {object} response.Envelope
// @Router /leave-plans/{id} [delete]
func (h *LeaveHandler) Delete(c *gin.Context) {
	if err := h.leaves.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Usage godoc
// @Summary Get per-type leave usage for an employee
// @Tags Leave
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/leave-usage [get]
func (h *LeaveHandler) Usage(c *gin.Context) {
	usage, err := h.leaves.Usage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usage, nil)
}
