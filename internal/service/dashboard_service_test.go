package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

type mockDashboardLeaves struct {
	plans []models.LeavePlan
}

func (m *mockDashboardLeaves) CountOnDate(ctx context.Context, leaveType models.LeaveType, date string) (int, error) {
	count := 0
	for _, plan := range m.plans {
		if (leaveType == "" || plan.LeaveType == leaveType) && plan.StartDate <= date && plan.EndDate >= date {
			count++
		}
	}
	return count, nil
}

func (m *mockDashboardLeaves) CountOverlapping(ctx context.Context, leaveType models.LeaveType, startDate, endDate string) (int, error) {
	count := 0
	for _, plan := range m.plans {
		if (leaveType == "" || plan.LeaveType == leaveType) && plan.StartDate <= endDate && plan.EndDate >= startDate {
			count++
		}
	}
	return count, nil
}

func (m *mockDashboardLeaves) ListOverlapping(ctx context.Context, startDate, endDate string) ([]models.LeavePlan, error) {
	var out []models.LeavePlan
	for _, plan := range m.plans {
		if plan.StartDate <= endDate && plan.EndDate >= startDate {
			out = append(out, plan)
		}
	}
	return out, nil
}

func newDashboardService(leaves *mockDashboardLeaves, roster *mockRosterRepo) *DashboardService {
	cache := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewDashboardService(leaves, seedEmployee(), roster, cache, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardSummary(t *testing.T) {
	leaves := &mockDashboardLeaves{plans: []models.LeavePlan{
		{EmployeeID: "e1", LeaveType: models.LeaveTypeSick, StartDate: "2024-03-14", EndDate: "2024-03-16"},
		{EmployeeID: "e2", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-03-20", EndDate: "2024-03-22"},
	}}
	roster := newMockRosterRepo()
	shiftID := "s1"
	require.NoError(t, roster.Upsert(context.Background(), &models.RosterAssignment{
		EmployeeID: "e1", Date: "2024-03-15", ShiftID: &shiftID,
	}))
	svc := newDashboardService(leaves, roster)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalStaff)
	assert.Equal(t, 1, summary.SickToday)
	assert.Equal(t, 1, summary.OnLeaveToday)
	assert.Equal(t, 2, summary.OnLeaveMonth)
	assert.Equal(t, 1, summary.SickMonth)
	assert.Equal(t, 1, summary.RosteredToday)
	assert.Equal(t, 2, summary.LeavePlansOpen)
}

func TestDashboardSummaryCountsAllLeaveTypes(t *testing.T) {
	leaves := &mockDashboardLeaves{plans: []models.LeavePlan{
		{EmployeeID: "e1", LeaveType: models.LeaveTypeSick, StartDate: "2024-03-15", EndDate: "2024-03-15"},
		{EmployeeID: "e2", LeaveType: models.LeaveTypeFRL, StartDate: "2024-03-14", EndDate: "2024-03-16"},
	}}
	svc := newDashboardService(leaves, newMockRosterRepo())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.OnLeaveToday)
	assert.Equal(t, 2, summary.OnLeaveMonth)
	assert.Equal(t, 1, summary.SickToday)
	assert.Equal(t, 1, summary.FRLToday)
}

func TestDashboardCalendar(t *testing.T) {
	leaves := &mockDashboardLeaves{plans: []models.LeavePlan{
		{EmployeeID: "e1", LeaveType: models.LeaveTypeAnnual, StartDate: "2024-03-01", EndDate: "2024-03-02"},
	}}
	svc := newDashboardService(leaves, newMockRosterRepo())

	calendar, err := svc.Calendar(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, calendar.Days, 31)
	assert.Equal(t, 1, calendar.Days[0].Annual)
	assert.Equal(t, 1, calendar.Days[1].Annual)
	assert.Equal(t, 0, calendar.Days[2].Annual)
}

func TestDashboardCalendarRejectsBadMonth(t *testing.T) {
	svc := newDashboardService(&mockDashboardLeaves{}, newMockRosterRepo())

	_, err := svc.Calendar(context.Background(), "March 2024")
	require.Error(t, err)
}
