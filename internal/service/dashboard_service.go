package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/dto"
	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard payload; writes that
// change leave or roster state clear it.
const dashboardCachePattern = "dashboard:*"

type dashboardLeaveRepository interface {
	CountOnDate(ctx context.Context, leaveType models.LeaveType, date string) (int, error)
	CountOverlapping(ctx context.Context, leaveType models.LeaveType, startDate, endDate string) (int, error)
	ListOverlapping(ctx context.Context, startDate, endDate string) ([]models.LeavePlan, error)
}

type dashboardEmployeeRepository interface {
	Count(ctx context.Context) (int, error)
}

type dashboardRosterRepository interface {
	ListByDate(ctx context.Context, date string) ([]models.RosterAssignmentDetail, error)
}

// DashboardService aggregates read-only leave and roster views.
type DashboardService struct {
	leaves    dashboardLeaveRepository
	employees dashboardEmployeeRepository
	roster    dashboardRosterRepository
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(leaves dashboardLeaveRepository, employees dashboardEmployeeRepository, roster dashboardRosterRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{leaves: leaves, employees: employees, roster: roster, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Summary returns headline staffing and leave counts for today and this month.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	today := s.now().UTC().Format(models.DateLayout)
	cacheKey := "dashboard:summary:" + today

	var cached dto.DashboardSummaryResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	total, err := s.employees.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count staff")
	}

	summary := &dto.DashboardSummaryResponse{TotalStaff: total}
	// on-leave headline counts span every leave type; sick and FRL break out
	dayCounts := []struct {
		leaveType models.LeaveType
		dest      *int
	}{
		{"", &summary.OnLeaveToday},
		{models.LeaveTypeSick, &summary.SickToday},
		{models.LeaveTypeFRL, &summary.FRLToday},
	}
	for _, c := range dayCounts {
		count, err := s.leaves.CountOnDate(ctx, c.leaveType, today)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leave")
		}
		*c.dest = count
	}

	monthStart, monthEnd := monthBounds(s.now().UTC())
	monthCounts := []struct {
		leaveType models.LeaveType
		dest      *int
	}{
		{"", &summary.OnLeaveMonth},
		{models.LeaveTypeSick, &summary.SickMonth},
		{models.LeaveTypeFRL, &summary.FRLMonth},
	}
	for _, c := range monthCounts {
		count, err := s.leaves.CountOverlapping(ctx, c.leaveType, monthStart, monthEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leave")
		}
		*c.dest = count
	}

	assignments, err := s.roster.ListByDate(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	summary.RosteredToday = len(assignments)

	plans, err := s.leaves.ListOverlapping(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave plans")
	}
	summary.LeavePlansOpen = len(plans)

	if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard summary cache set failed", zap.Error(err))
	}
	return summary, nil
}

// Calendar returns per-day leave counts for a month given as yyyy-MM.
func (s *DashboardService) Calendar(ctx context.Context, month string) (*dto.DashboardCalendarResponse, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month, expected yyyy-MM")
	}
	last := first.AddDate(0, 1, -1)
	startDate := first.Format(models.DateLayout)
	endDate := last.Format(models.DateLayout)

	cacheKey := "dashboard:calendar:" + month
	var cached dto.DashboardCalendarResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	plans, err := s.leaves.ListOverlapping(ctx, startDate, endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave plans")
	}

	calendar := &dto.DashboardCalendarResponse{Month: month}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateLayout)
		entry := dto.DashboardDaySummary{Date: date}
		for _, plan := range plans {
			if plan.StartDate <= date && plan.EndDate >= date {
				switch plan.LeaveType {
				case models.LeaveTypeAnnual:
					entry.Annual++
				case models.LeaveTypeSick:
					entry.Sick++
				case models.LeaveTypeFRL:
					entry.FRL++
				}
			}
		}
		calendar.Days = append(calendar.Days, entry)
	}

	if err := s.cache.Set(ctx, cacheKey, calendar, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard calendar cache set failed", zap.Error(err))
	}
	return calendar, nil
}

// TodayRoster returns today's duty assignments with shift details.
func (s *DashboardService) TodayRoster(ctx context.Context) ([]dto.DashboardRosterEntry, error) {
	today := s.now().UTC().Format(models.DateLayout)
	assignments, err := s.roster.ListByDate(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	entries := make([]dto.DashboardRosterEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entry := dto.DashboardRosterEntry{
			EmployeeID:   assignment.EmployeeID,
			EmployeeName: assignment.EmployeeName,
			StaffID:      assignment.StaffID,
		}
		if assignment.ShiftID != nil {
			shiftName := assignment.ShiftName
			start := assignment.ShiftStart
			end := assignment.ShiftEnd
			entry.ShiftName = &shiftName
			entry.StartTime = &start
			entry.EndTime = &end
		}
		if assignment.ShiftTypeID != nil {
			location := assignment.Location
			entry.Location = &location
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// InvalidateCache clears cached dashboard payloads after writes.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
}

func monthBounds(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(models.DateLayout), last.Format(models.DateLayout)
}
