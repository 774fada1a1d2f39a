package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kairos-hr/attendance-admin-api/internal/service"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
	"github.com/kairos-hr/attendance-admin-api/pkg/response"
)

// RosterHandler exposes shift, shift type and duty roster endpoints.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// ListShifts godoc
// @Summary List shifts
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *RosterHandler) ListShifts(c *gin.Context) {
	shifts, err := h.roster.ListShifts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, nil)
}

// CreateShift godoc
// @Summary Create shift
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.ShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *RosterHandler) CreateShift(c *gin.Context) {
	var req service.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.roster.CreateShift(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// UpdateShift godoc
// @Summary Update shift
// @Tags Roster
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body service.ShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [put]
func (h *RosterHandler) UpdateShift(c *gin.Context) {
	var req service.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.roster.UpdateShift(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// DeleteShift godoc
// @Summary Delete shift
// @Tags Roster
// @Produce json
// @Param id path string true "Shift ID"
// @Success 204 {object} response.Envelope
// @Router /shifts/{id} [delete]
func (h *RosterHandler) DeleteShift(c *gin.Context) {
	if err := h.roster.DeleteShift(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListShiftTypes godoc
// @Summary List shift types
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shift-types [get]
func (h *RosterHandler) ListShiftTypes(c *gin.Context) {
	types, err := h.roster.ListShiftTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// CreateShiftType godoc
// @Summary Create shift type
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.ShiftTypeRequest true "Shift type payload"
// @Success 201 {object} response.Envelope
// @Router /shift-types [post]
func (h *RosterHandler) CreateShiftType(c *gin.Context) {
	var req service.ShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shiftType, err := h.roster.CreateShiftType(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shiftType)
}

// UpdateShiftType godoc
// @Summary Update shift type
// @Tags Roster
// @Accept json
// @Produce json
// @Param id path string true "Shift type ID"
// @Param payload body service.ShiftTypeRequest true "Shift type payload"
// @Success 200 {object} response.Envelope
// @Router /shift-types/{id} [put]
func (h *RosterHandler) UpdateShiftType(c *gin.Context) {
	var req service.ShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shiftType, err := h.roster.UpdateShiftType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shiftType, nil)
}

// DeleteShiftType godoc
// @Summary Delete shift type
// @Tags Roster
// @Produce json
// @Param id path string true "Shift type ID"
// @Success 204 {object} response.Envelope
// @Router /shift-types/{id} [delete]
func (h *RosterHandler) DeleteShiftType(c *gin.Context) {
	if err := h.roster.DeleteShiftType(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Grid godoc
// @Summary Get the duty roster grid
// @Description Dense per-employee per-date grid for the requested range
// @Tags Roster
// @Produce json
// @Param startDate query string true "Start date yyyy-MM-dd"
// @Param endDate query string true "End date yyyy-MM-dd"
// @Param employeeIds query string false "Comma separated employee IDs"
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) Grid(c *gin.Context) {
	req := service.RosterGridRequest{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if ids := strings.TrimSpace(c.Query("employeeIds")); ids != "" {
		req.EmployeeIDs = strings.Split(ids, ",")
	}
	grid, err := h.roster.Grid(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Save godoc
// @Summary Save duty roster cells
// @Description Cells with both shift references empty clear the assignment
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.SaveRosterRequest true "Roster cells"
// @Success 200 {object} response.Envelope
// @Router /roster [put]
func (h *RosterHandler) Save(c *gin.Context) {
	var req service.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	saved, err := h.roster.Save(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": saved}, nil)
}
