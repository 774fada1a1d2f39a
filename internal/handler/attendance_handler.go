package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	"github.com/kairos-hr/attendance-admin-api/internal/service"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
	"github.com/kairos-hr/attendance-admin-api/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler exposes attendance record, import and export endpoints.
type AttendanceHandler struct {
	attendance  *service.AttendanceService
	imports     *service.ImportService
	exports     *service.ExportService
	maxFileSize int64
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, imports *service.ImportService, exports *service.ExportService, maxFileSize int64) *AttendanceHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &AttendanceHandler{attendance: attendance, imports: imports, exports: exports, maxFileSize: maxFileSize}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param employeeId query string false "Filter by employee"
// @Param startDate query string false "Start date yyyy-MM-dd"
// @Param endDate query string false "End date yyyy-MM-dd"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter
	filter.EmployeeID = c.Query("employeeId")
	filter.StartDate = c.Query("startDate")
	filter.EndDate = c.Query("endDate")
	filter.SortOrder = c.Query("order")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// GetByEmployee godoc
// @Summary Get all attendance records for an employee
// @Tags Attendance
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/attendance [get]
func (h *AttendanceHandler) GetByEmployee(c *gin.Context) {
	result, err := h.attendance.GetEmployeeAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Replace godoc
// @Summary Replace an employee's attendance records
// @Description Uploaded records become the employee's full record set, rows absent from the payload are deleted
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.ReplaceAttendanceRequest true "Attendance rows"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/attendance [put]
func (h *AttendanceHandler) Replace(c *gin.Context) {
	var req service.ReplaceAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.attendance.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Upsert godoc
// @Summary Create or update one attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.AttendanceEntryRequest true "Attendance row"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/attendance/record [put]
func (h *AttendanceHandler) Upsert(c *gin.Context) {
	var req service.AttendanceEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Upsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete one attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import a timecard spreadsheet
// @Description Accepts an xlsx upload, matches rows to employees by staff ID and name
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Timecard xlsx"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/import [post]
func (h *AttendanceHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file upload required"))
		return
	}
	if header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", h.maxFileSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read upload"))
		return
	}
	defer file.Close()

	summary, err := h.imports.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export attendance as an xlsx workbook
// @Description One sheet per employee, restricted by employee and date range filters
// @Tags Attendance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param employeeId query string false "Filter by employee"
// @Param startDate query string false "Start date yyyy-MM-dd"
// @Param endDate query string false "End date yyyy-MM-dd"
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	req := service.ExportRequest{
		EmployeeID: c.Query("employeeId"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
	}
	result, err := h.exports.ExportWorkbook(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}
