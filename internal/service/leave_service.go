package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type leaveRepository interface {
	List(ctx context.Context, employeeID string, leaveType models.LeaveType, startDate, endDate string) ([]models.LeavePlanDetail, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.LeavePlan, error)
	FindByID(ctx context.Context, id string) (*models.LeavePlan, error)
	Create(ctx context.Context, plan *models.LeavePlan) error
	Delete(ctx context.Context, id string) error
}

// CreateLeavePlanRequest holds payload for adding a leave plan.
type CreateLeavePlanRequest struct {
	EmployeeID string           `json:"employee_id" validate:"required"`
	LeaveType  models.LeaveType `json:"leave_type" validate:"required"`
	StartDate  string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string           `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// LeaveService enforces plan limits and per-type annual quotas.
type LeaveService struct {
	repo      leaveRepository
	employees employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLeaveService constructs the leave service.
func NewLeaveService(repo leaveRepository, employees employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, employees: employees, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns leave plans with employee names and inclusive day counts.
func (s *LeaveService) List(ctx context.Context, employeeID string, leaveType models.LeaveType, startDate, endDate string) ([]models.LeavePlanDetail, error) {
	if leaveType != "" && !leaveType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown leave type")
	}
	plans, err := s.repo.List(ctx, employeeID, leaveType, startDate, endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave plans")
	}
	for i := range plans {
		plans[i].Days = calculateLeaveDays(plans[i].StartDate, plans[i].EndDate)
	}
	return plans, nil
}

// Create validates plan count and quota before inserting a plan.
func (s *LeaveService) Create(ctx context.Context, req CreateLeavePlanRequest, createdBy string) (*models.LeavePlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave plan payload")
	}
	if !req.LeaveType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown leave type")
	}
	if req.EndDate < req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}
	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	existing, err := s.repo.ListByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave plans")
	}
	if len(existing) >= models.MaxLeavePlansPerEmployee {
		return nil, appErrors.Clone(appErrors.ErrPlanLimitReached,
			fmt.Sprintf("employee already has %d leave plans", models.MaxLeavePlansPerEmployee))
	}

	used := s.usedDays(existing, req.LeaveType)
	requested := calculateLeaveDays(req.StartDate, req.EndDate)
	quota := req.LeaveType.Quota()
	if used+requested > quota {
		return nil, appErrors.Clone(appErrors.ErrQuotaExceeded,
			fmt.Sprintf("%s quota exceeded: %d used + %d requested > %d", req.LeaveType, used, requested, quota))
	}

	plan := &models.LeavePlan{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if createdBy != "" {
		plan.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave plan")
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
	return plan, nil
}

// Delete removes a plan unconditionally.
func (s *LeaveService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "leave plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete leave plan")
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
	return nil
}

// Usage reports used versus allowed days per type for one employee.
func (s *LeaveService) Usage(ctx context.Context, employeeID string) ([]models.LeaveUsage, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	plans, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave plans")
	}
	usage := make([]models.LeaveUsage, 0, 3)
	for _, leaveType := range []models.LeaveType{models.LeaveTypeAnnual, models.LeaveTypeFRL, models.LeaveTypeSick} {
		usage = append(usage, models.LeaveUsage{
			LeaveType: leaveType,
			UsedDays:  s.usedDays(plans, leaveType),
			QuotaDays: leaveType.Quota(),
		})
	}
	return usage, nil
}

// usedDays sums day counts of same-type plans whose start date falls in the
// current calendar year. Plans spanning a year boundary are not prorated.
func (s *LeaveService) usedDays(plans []models.LeavePlan, leaveType models.LeaveType) int {
	year := s.now().UTC().Year()
	used := 0
	for _, plan := range plans {
		if plan.LeaveType != leaveType {
			continue
		}
		start, err := time.Parse(models.DateLayout, plan.StartDate)
		if err != nil || start.Year() != year {
			continue
		}
		used += calculateLeaveDays(plan.StartDate, plan.EndDate)
	}
	return used
}

// calculateLeaveDays is the inclusive day count of a date range.
func calculateLeaveDays(startDate, endDate string) int {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
