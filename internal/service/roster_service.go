package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type shiftRepository interface {
	ListShifts(ctx context.Context) ([]models.Shift, error)
	FindShift(ctx context.Context, id string) (*models.Shift, error)
	CreateShift(ctx context.Context, shift *models.Shift) error
	UpdateShift(ctx context.Context, shift *models.Shift) error
	DeleteShift(ctx context.Context, id string) error
	ListShiftTypes(ctx context.Context) ([]models.ShiftType, error)
	FindShiftType(ctx context.Context, id string) (*models.ShiftType, error)
	CreateShiftType(ctx context.Context, shiftType *models.ShiftType) error
	UpdateShiftType(ctx context.Context, shiftType *models.ShiftType) error
	DeleteShiftType(ctx context.Context, id string) error
}

type rosterRepository interface {
	ListRange(ctx context.Context, startDate, endDate string) ([]models.RosterAssignmentDetail, error)
	ListByDate(ctx context.Context, date string) ([]models.RosterAssignmentDetail, error)
	Upsert(ctx context.Context, assignment *models.RosterAssignment) error
	Delete(ctx context.Context, employeeID, date string) error
}

// ShiftRequest holds payload for creating or updating shifts.
type ShiftRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	StartTime   string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time" validate:"required,datetime=15:04"`
	Color       string `json:"color"`
	GracePeriod int    `json:"grace_period" validate:"gte=0"`
}

// ShiftTypeRequest holds payload for creating or updating shift types.
type ShiftTypeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// RosterGridRequest selects the grid window.
type RosterGridRequest struct {
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	EmployeeIDs []string `json:"employee_ids"`
}

// SaveRosterRequest bulk-saves populated grid cells.
type SaveRosterRequest struct {
	Cells []models.RosterCell `json:"cells" validate:"required,dive"`
}

// RosterService handles shifts, shift types and the duty roster grid.
type RosterService struct {
	shifts    shiftRepository
	roster    rosterRepository
	employees employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(shifts shiftRepository, roster rosterRepository, employees employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{shifts: shifts, roster: roster, employees: employees, cache: cache, validator: validate, logger: logger}
}

// ListShifts returns all shift templates.
func (s *RosterService) ListShifts(ctx context.Context) ([]models.Shift, error) {
	shifts, err := s.shifts.ListShifts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, nil
}

// CreateShift registers a new shift template.
func (s *RosterService) CreateShift(ctx context.Context, req ShiftRequest, createdBy string) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	shift := &models.Shift{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
		GracePeriod: req.GracePeriod,
	}
	if createdBy != "" {
		shift.CreatedBy = &createdBy
	}
	if err := s.shifts.CreateShift(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	return shift, nil
}

// UpdateShift modifies an existing shift template.
func (s *RosterService) UpdateShift(ctx context.Context, id string, req ShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	shift, err := s.shifts.FindShift(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	shift.Name = req.Name
	shift.Description = req.Description
	shift.StartTime = req.StartTime
	shift.EndTime = req.EndTime
	shift.Color = req.Color
	shift.GracePeriod = req.GracePeriod
	if err := s.shifts.UpdateShift(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}
	return shift, nil
}

// DeleteShift removes a shift template.
func (s *RosterService) DeleteShift(ctx context.Context, id string) error {
	if _, err := s.shifts.FindShift(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	if err := s.shifts.DeleteShift(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift")
	}
	return nil
}

// ListShiftTypes returns all shift types.
func (s *RosterService) ListShiftTypes(ctx context.Context) ([]models.ShiftType, error) {
	types, err := s.shifts.ListShiftTypes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shift types")
	}
	return types, nil
}

// CreateShiftType registers a new shift type.
func (s *RosterService) CreateShiftType(ctx context.Context, req ShiftTypeRequest, createdBy string) (*models.ShiftType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift type payload")
	}
	shiftType := &models.ShiftType{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	}
	if createdBy != "" {
		shiftType.CreatedBy = &createdBy
	}
	if err := s.shifts.CreateShiftType(ctx, shiftType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift type")
	}
	return shiftType, nil
}

// UpdateShiftType modifies an existing shift type.
func (s *RosterService) UpdateShiftType(ctx context.Context, id string, req ShiftTypeRequest) (*models.ShiftType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift type payload")
	}
	shiftType, err := s.shifts.FindShiftType(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift type")
	}
	shiftType.Name = req.Name
	shiftType.Description = req.Description
	shiftType.Location = req.Location
	if err := s.shifts.UpdateShiftType(ctx, shiftType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift type")
	}
	return shiftType, nil
}

// DeleteShiftType removes a shift type.
func (s *RosterService) DeleteShiftType(ctx context.Context, id string) error {
	if _, err := s.shifts.FindShiftType(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "shift type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift type")
	}
	if err := s.shifts.DeleteShiftType(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift type")
	}
	return nil
}

// Grid returns the dense (employee x date) roster for the window. Every
// selected employee gets a cell for every date even when nothing is assigned.
func (s *RosterService) Grid(ctx context.Context, req RosterGridRequest) (*models.RosterGrid, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster window")
	}
	dates, err := datesBetween(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	if len(req.EmployeeIDs) > 0 {
		wanted := make(map[string]struct{}, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			wanted[id] = struct{}{}
		}
		filtered := employees[:0]
		for _, employee := range employees {
			if _, ok := wanted[employee.ID]; ok {
				filtered = append(filtered, employee)
			}
		}
		employees = filtered
	}

	assignments, err := s.roster.ListRange(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	assigned := make(map[string]models.RosterAssignmentDetail, len(assignments))
	for _, assignment := range assignments {
		assigned[assignment.EmployeeID+"|"+assignment.Date] = assignment
	}

	grid := &models.RosterGrid{Dates: dates}
	for _, employee := range employees {
		row := models.RosterRow{EmployeeID: employee.ID, EmployeeName: employee.Name}
		for _, date := range dates {
			cell := models.RosterCell{EmployeeID: employee.ID, Date: date}
			if assignment, ok := assigned[employee.ID+"|"+date]; ok {
				cell.ShiftID = assignment.ShiftID
				cell.ShiftTypeID = assignment.ShiftTypeID
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

// Save bulk-upserts populated cells one (employee, date) at a time.
func (s *RosterService) Save(ctx context.Context, req SaveRosterRequest, createdBy string) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}
	saved := 0
	for _, cell := range req.Cells {
		if cell.EmployeeID == "" || cell.Date == "" {
			return saved, appErrors.Clone(appErrors.ErrValidation, "roster cell missing employee or date")
		}
		if cell.ShiftID == nil && cell.ShiftTypeID == nil {
			if err := s.roster.Delete(ctx, cell.EmployeeID, cell.Date); err != nil {
				return saved, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear roster cell")
			}
			continue
		}
		assignment := models.RosterAssignment{
			EmployeeID:  cell.EmployeeID,
			Date:        cell.Date,
			ShiftID:     cell.ShiftID,
			ShiftTypeID: cell.ShiftTypeID,
		}
		if createdBy != "" {
			assignment.CreatedBy = &createdBy
		}
		if err := s.roster.Upsert(ctx, &assignment); err != nil {
			return saved, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster cell")
		}
		saved++
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
	return saved, nil
}

func datesBetween(start, end string) ([]string, error) {
	from, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	to, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}
	var dates []string
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format(models.DateLayout))
	}
	return dates, nil
}
