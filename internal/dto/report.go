package dto

import "github.com/kairos-hr/attendance-admin-api/internal/models"

// ReportRequest captures the POST /reports payload.
type ReportRequest struct {
	Type       models.ReportType   `json:"type"`
	EmployeeID *string             `json:"employeeId,omitempty"`
	StartDate  string              `json:"startDate,omitempty"`
	EndDate    string              `json:"endDate,omitempty"`
	Format     models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
