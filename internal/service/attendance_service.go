package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecordDetail, error)
	ListRange(ctx context.Context, employeeID, startDate, endDate string) ([]models.AttendanceRecordDetail, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	DeleteByDates(ctx context.Context, employeeID string, dates []string) error
	Delete(ctx context.Context, id string) error
}

// AttendanceEntryRequest is one editable day row in the attendance editor.
type AttendanceEntryRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	DutyTime string `json:"duty_time"`
	InTime1  string `json:"in_time_1"`
	OutTime1 string `json:"out_time_1"`
	InTime2  string `json:"in_time_2"`
	OutTime2 string `json:"out_time_2"`
	InTime3  string `json:"in_time_3"`
	OutTime3 string `json:"out_time_3"`
	Medical  bool   `json:"medical"`
	Absent   bool   `json:"absent"`
	Remarks  string `json:"remarks"`
}

// ReplaceAttendanceRequest is the full replacement payload for one employee.
type ReplaceAttendanceRequest struct {
	Records []AttendanceEntryRequest `json:"records" validate:"required,dive"`
}

// AttendanceService handles listing and editing of attendance records.
type AttendanceService struct {
	repo      attendanceRepository
	employees employeeRepository
	pageSize  int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. pageSize is the
// listing default applied when a request carries no limit.
func NewAttendanceService(repo attendanceRepository, employees employeeRepository, pageSize int, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if pageSize <= 0 {
		pageSize = 30
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, employees: employees, pageSize: pageSize, validator: validate, logger: logger}
}

// List returns attendance records with derived late flags plus pagination.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	if filter.PageSize <= 0 || filter.PageSize > 366 {
		filter.PageSize = s.pageSize
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	for i := range records {
		records[i].Late = isLate(records[i].InTime1, records[i].DutyTime, records[i].GracePeriod)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pagination := &models.Pagination{Page: page, PageSize: filter.PageSize, TotalCount: total}
	return records, pagination, nil
}

// GetEmployeeAttendance returns every record for one employee with late flags.
func (s *AttendanceService) GetEmployeeAttendance(ctx context.Context, employeeID string) (*models.EmployeeAttendance, error) {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	for i := range records {
		records[i].Late = isLate(records[i].InTime1, records[i].DutyTime, records[i].GracePeriod)
	}
	return &models.EmployeeAttendance{Employee: *employee, Records: records}, nil
}

// Replace reconciles an employee's stored records against the submitted set.
// Submitted dates must be unique; existing rows for dates absent from the
// payload are removed.
func (s *AttendanceService) Replace(ctx context.Context, employeeID string, req ReplaceAttendanceRequest) ([]models.AttendanceRecordDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	if dupes := duplicateDates(req.Records); len(dupes) > 0 {
		return nil, appErrors.Clone(appErrors.ErrDuplicateDate, fmt.Sprintf("duplicate dates: %s", strings.Join(dupes, ", ")))
	}

	entries := make([]AttendanceEntryRequest, len(req.Records))
	copy(entries, req.Records)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	existing, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	existingByDate := make(map[string]models.AttendanceRecordDetail, len(existing))
	for _, record := range existing {
		existingByDate[record.Date] = record
	}

	submitted := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		submitted[entry.Date] = struct{}{}
		record := models.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       entry.Date,
			DutyTime:   entry.DutyTime,
			InTime1:    entry.InTime1,
			OutTime1:   entry.OutTime1,
			InTime2:    entry.InTime2,
			OutTime2:   entry.OutTime2,
			InTime3:    entry.InTime3,
			OutTime3:   entry.OutTime3,
			Medical:    entry.Medical,
			Absent:     entry.Absent,
			Remarks:    entry.Remarks,
		}
		if prior, ok := existingByDate[entry.Date]; ok {
			record.ID = prior.ID
			record.CreatedAt = prior.CreatedAt
			if err := s.repo.Update(ctx, &record); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
			}
			continue
		}
		if err := s.repo.Upsert(ctx, &record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
		}
	}

	var removed []string
	for date := range existingByDate {
		if _, ok := submitted[date]; !ok {
			removed = append(removed, date)
		}
	}
	if err := s.repo.DeleteByDates(ctx, employeeID, removed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove attendance")
	}

	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload attendance")
	}
	for i := range records {
		records[i].Late = isLate(records[i].InTime1, records[i].DutyTime, records[i].GracePeriod)
	}
	return records, nil
}

// Upsert saves one record keyed by employee and date.
func (s *AttendanceService) Upsert(ctx context.Context, employeeID string, entry AttendanceEntryRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	record := &models.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       entry.Date,
		DutyTime:   entry.DutyTime,
		InTime1:    entry.InTime1,
		OutTime1:   entry.OutTime1,
		InTime2:    entry.InTime2,
		OutTime2:   entry.OutTime2,
		InTime3:    entry.InTime3,
		OutTime3:   entry.OutTime3,
		Medical:    entry.Medical,
		Absent:     entry.Absent,
		Remarks:    entry.Remarks,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return record, nil
}

// Delete removes one record by ID.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}

func duplicateDates(entries []AttendanceEntryRequest) []string {
	seen := make(map[string]int, len(entries))
	for _, entry := range entries {
		seen[entry.Date]++
	}
	var dupes []string
	for date, count := range seen {
		if count > 1 {
			dupes = append(dupes, date)
		}
	}
	sort.Strings(dupes)
	return dupes
}

// isLate compares the first clock-in against the duty start plus the grace
// period. Unparseable values never mark a record late.
func isLate(inTime, dutyTime string, gracePeriod int) bool {
	in, err := parseClock(inTime)
	if err != nil {
		return false
	}
	duty, err := parseClock(dutyTime)
	if err != nil {
		return false
	}
	return in > duty+gracePeriod
}

func parseClock(value string) (int, error) {
	parsed, err := time.Parse(models.TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
