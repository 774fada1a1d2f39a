package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type mockLeaveRepo struct {
	plans   map[string]models.LeavePlan
	deleted []string
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{plans: make(map[string]models.LeavePlan)}
}

func (m *mockLeaveRepo) List(ctx context.Context, employeeID string, leaveType models.LeaveType, startDate, endDate string) ([]models.LeavePlanDetail, error) {
	var out []models.LeavePlanDetail
	for _, plan := range m.plans {
		if employeeID != "" && plan.EmployeeID != employeeID {
			continue
		}
		out = append(out, models.LeavePlanDetail{LeavePlan: plan, EmployeeName: "Jane Perera"})
	}
	return out, nil
}

func (m *mockLeaveRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.LeavePlan, error) {
	var out []models.LeavePlan
	for _, plan := range m.plans {
		if plan.EmployeeID == employeeID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (m *mockLeaveRepo) FindByID(ctx context.Context, id string) (*models.LeavePlan, error) {
	if plan, ok := m.plans[id]; ok {
		return &plan, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeaveRepo) Create(ctx context.Context, plan *models.LeavePlan) error {
	if plan.ID == "" {
		plan.ID = fmt.Sprintf("plan-%d", len(m.plans)+1)
	}
	m.plans[plan.ID] = *plan
	return nil
}

func (m *mockLeaveRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.plans, id)
	return nil
}

type mockCacheRepo struct {
	invalidated []string
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	return nil
}

func newLeaveService(repo *mockLeaveRepo) *LeaveService {
	svc := NewLeaveService(repo, seedEmployee(), nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCalculateLeaveDays(t *testing.T) {
	assert.Equal(t, 1, calculateLeaveDays("2024-04-01", "2024-04-01"))
	assert.Equal(t, 5, calculateLeaveDays("2024-04-01", "2024-04-05"))
	assert.Equal(t, 0, calculateLeaveDays("2024-04-05", "2024-04-01"))
	assert.Equal(t, 0, calculateLeaveDays("bad", "2024-04-01"))
}

func TestLeaveCreateFourthPlanRejected(t *testing.T) {
	repo := newMockLeaveRepo()
	for i := 1; i <= 3; i++ {
		date := fmt.Sprintf("2024-0%d-01", i)
		require.NoError(t, repo.Create(context.Background(), &models.LeavePlan{
			EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: date, EndDate: date,
		}))
	}
	svc := newLeaveService(repo)

	_, err := svc.Create(context.Background(), CreateLeavePlanRequest{
		EmployeeID: "e1", LeaveType: models.LeaveTypeSick, StartDate: "2024-08-01", EndDate: "2024-08-01",
	}, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPlanLimitReached.Code, appErrors.FromError(err).Code)
}

func TestLeaveQuotaBoundary(t *testing.T) {
	repo := newMockLeaveRepo()
	// 27 annual days already used this year
	require.NoError(t, repo.Create(context.Background(), &models.LeavePlan{
		EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-01-01", EndDate: "2024-01-27",
	}))
	svc := newLeaveService(repo)

	_, err := svc.Create(context.Background(), CreateLeavePlanRequest{
		EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-07-01", EndDate: "2024-07-05",
	}, "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrQuotaExceeded.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "27 used + 5 requested > 30")

	plan, err := svc.Create(context.Background(), CreateLeavePlanRequest{
		EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-07-01", EndDate: "2024-07-03",
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", *plan.CreatedBy)
}

func TestLeaveQuotaIgnoresOtherYears(t *testing.T) {
	repo := newMockLeaveRepo()
	require.NoError(t, repo.Create(context.Background(), &models.LeavePlan{
		EmployeeID: "e1", LeaveType: models.LeaveTypeFRL, StartDate: "2023-12-25", EndDate: "2024-01-03",
	}))
	svc := newLeaveService(repo)

	// prior plan starts in 2023 so the full FRL quota is available
	_, err := svc.Create(context.Background(), CreateLeavePlanRequest{
		EmployeeID: "e1", LeaveType: models.LeaveTypeFRL, StartDate: "2024-07-01", EndDate: "2024-07-10",
	}, "")
	require.NoError(t, err)
}

func TestLeaveDeleteUnconditional(t *testing.T) {
	repo := newMockLeaveRepo()
	require.NoError(t, repo.Create(context.Background(), &models.LeavePlan{
		EmployeeID: "e1", LeaveType: models.LeaveTypeSick, StartDate: "2024-04-01", EndDate: "2024-04-02",
	}))
	svc := newLeaveService(repo)

	require.NoError(t, svc.Delete(context.Background(), "plan-1"))
	assert.Empty(t, repo.plans)
}

func TestLeaveWritesInvalidateDashboardCache(t *testing.T) {
	repo := newMockLeaveRepo()
	cacheRepo := &mockCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewLeaveService(repo, seedEmployee(), cache, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

	plan, err := svc.Create(context.Background(), CreateLeavePlanRequest{
		EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-06-03", EndDate: "2024-06-04",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard:*"}, cacheRepo.invalidated)

	require.NoError(t, svc.Delete(context.Background(), plan.ID))
	assert.Equal(t, []string{"dashboard:*", "dashboard:*"}, cacheRepo.invalidated)
}

func TestLeaveUsage(t *testing.T) {
	repo := newMockLeaveRepo()
	require.NoError(t, repo.Create(context.Background(), &models.LeavePlan{
		EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-02-01", EndDate: "2024-02-05",
	}))
	svc := newLeaveService(repo)

	usage, err := svc.Usage(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, usage, 3)
	assert.Equal(t, models.LeaveTypeAnnual, usage[0].LeaveType)
	assert.Equal(t, 5, usage[0].UsedDays)
	assert.Equal(t, 30, usage[0].QuotaDays)
	assert.Equal(t, 10, usage[1].QuotaDays)
}
