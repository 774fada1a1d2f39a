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

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	ListAll(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByStaffID(ctx context.Context, staffID string, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

// CreateEmployeeRequest holds payload for creating employees.
type CreateEmployeeRequest struct {
	Name          string `json:"name" validate:"required"`
	StaffID       string `json:"staff_id" validate:"required"`
	Position      string `json:"position"`
	Department    string `json:"department"`
	ContactNumber string `json:"contact_number"`
	JoinedDate    string `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateEmployeeRequest holds payload for updating employees.
type UpdateEmployeeRequest struct {
	Name          string `json:"name" validate:"required"`
	StaffID       string `json:"staff_id" validate:"required"`
	Position      string `json:"position"`
	Department    string `json:"department"`
	ContactNumber string `json:"contact_number"`
	JoinedDate    string `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
}

// EmployeeService handles employee directory use-cases.
type EmployeeService struct {
	repo      employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns employees and pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return employees, pagination, nil
}

// ListAll returns every employee without pagination, for pickers and exports.
func (s *EmployeeService) ListAll(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, nil
}

// Get returns one employee by ID.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create registers a new employee. Staff IDs are unique and a joined date may
// not be in the future.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if err := validateJoinedDate(req.JoinedDate); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByStaffID(ctx, req.StaffID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate staff id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff id already used")
	}
	employee := &models.Employee{
		Name:          req.Name,
		StaffID:       req.StaffID,
		Position:      req.Position,
		Department:    req.Department,
		ContactNumber: req.ContactNumber,
		JoinedDate:    req.JoinedDate,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
	return employee, nil
}

// Update modifies an existing employee record.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if err := validateJoinedDate(req.JoinedDate); err != nil {
		return nil, err
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	exists, err := s.repo.ExistsByStaffID(ctx, req.StaffID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate staff id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff id already used")
	}
	employee.Name = req.Name
	employee.StaffID = req.StaffID
	employee.Position = req.Position
	employee.Department = req.Department
	employee.ContactNumber = req.ContactNumber
	employee.JoinedDate = req.JoinedDate
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Delete removes an employee and all dependent rows.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
	return nil
}

func validateJoinedDate(joined string) error {
	if joined == "" {
		return nil
	}
	day, err := time.Parse(models.DateLayout, joined)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid joined date")
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if day.After(today) {
		return appErrors.Clone(appErrors.ErrValidation, "joined date cannot be in the future")
	}
	return nil
}
