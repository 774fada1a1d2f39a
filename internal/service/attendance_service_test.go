package service

import (
	"context"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type mockAttendanceRepo struct {
	byDate     map[string]map[string]models.AttendanceRecord
	grace      map[string]int
	updated    []string
	deleted    []string
	lastFilter models.AttendanceFilter
	err        error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{byDate: make(map[string]map[string]models.AttendanceRecord), grace: make(map[string]int)}
}

func (m *mockAttendanceRepo) details(employeeID string) []models.AttendanceRecordDetail {
	var out []models.AttendanceRecordDetail
	for _, record := range m.byDate[employeeID] {
		out = append(out, models.AttendanceRecordDetail{AttendanceRecord: record, GracePeriod: m.grace[record.Date]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	records := m.details(filter.EmployeeID)
	return records, len(records), nil
}

func (m *mockAttendanceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecordDetail, error) {
	return m.details(employeeID), m.err
}

func (m *mockAttendanceRepo) ListRange(ctx context.Context, employeeID, startDate, endDate string) ([]models.AttendanceRecordDetail, error) {
	var out []models.AttendanceRecordDetail
	for id := range m.byDate {
		if employeeID != "" && id != employeeID {
			continue
		}
		for _, detail := range m.details(id) {
			if startDate != "" && detail.Date < startDate {
				continue
			}
			if endDate != "" && detail.Date > endDate {
				continue
			}
			out = append(out, detail)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date < out[j].Date
	})
	return out, m.err
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = "rec-" + record.Date
	}
	perDate, ok := m.byDate[record.EmployeeID]
	if !ok {
		perDate = make(map[string]models.AttendanceRecord)
		m.byDate[record.EmployeeID] = perDate
	}
	perDate[record.Date] = *record
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.AttendanceRecord) error {
	m.updated = append(m.updated, record.Date)
	m.byDate[record.EmployeeID][record.Date] = *record
	return nil
}

func (m *mockAttendanceRepo) DeleteByDates(ctx context.Context, employeeID string, dates []string) error {
	for _, date := range dates {
		m.deleted = append(m.deleted, date)
		delete(m.byDate[employeeID], date)
	}
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func seedEmployee() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: map[string]models.Employee{
		"e1": {ID: "e1", Name: "Jane Perera", StaffID: "ST-001"},
	}}
}

func TestAttendanceReplaceRejectsDuplicateDates(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, seedEmployee(), 0, validator.New(), zap.NewNop())

	_, err := svc.Replace(context.Background(), "e1", ReplaceAttendanceRequest{Records: []AttendanceEntryRequest{
		{Date: "2024-03-01"},
		{Date: "2024-03-02"},
		{Date: "2024-03-01"},
		{Date: "2024-03-02"},
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateDate.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "2024-03-01")
	assert.Contains(t, appErr.Message, "2024-03-02")
	assert.Empty(t, repo.byDate["e1"])
}

func TestAttendanceReplaceReconciles(t *testing.T) {
	repo := newMockAttendanceRepo()
	require.NoError(t, repo.Upsert(context.Background(), &models.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-01", InTime1: "08:00"}))
	require.NoError(t, repo.Upsert(context.Background(), &models.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-02", InTime1: "08:00"}))
	svc := NewAttendanceService(repo, seedEmployee(), 0, validator.New(), zap.NewNop())

	records, err := svc.Replace(context.Background(), "e1", ReplaceAttendanceRequest{Records: []AttendanceEntryRequest{
		{Date: "2024-03-03", InTime1: "09:00"},
		{Date: "2024-03-01", InTime1: "08:30"},
	}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-03-01", "2024-03-03"}, []string{records[0].Date, records[1].Date})
	assert.Equal(t, "08:30", records[0].InTime1)
	assert.Contains(t, repo.updated, "2024-03-01")
	assert.Contains(t, repo.deleted, "2024-03-02")
}

func TestAttendanceReplaceUnknownEmployee(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, seedEmployee(), 0, validator.New(), zap.NewNop())

	_, err := svc.Replace(context.Background(), "missing", ReplaceAttendanceRequest{Records: []AttendanceEntryRequest{{Date: "2024-03-01"}}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLateFlagBoundaries(t *testing.T) {
	assert.False(t, isLate("09:05", "09:00", 10))
	assert.True(t, isLate("09:15", "09:00", 10))
	assert.False(t, isLate("09:10", "09:00", 10))
	assert.False(t, isLate("", "09:00", 10))
	assert.False(t, isLate("garbage", "09:00", 10))
	assert.False(t, isLate("09:30", "", 0))
}

func TestAttendanceListSetsLateFlag(t *testing.T) {
	repo := newMockAttendanceRepo()
	require.NoError(t, repo.Upsert(context.Background(), &models.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-01", DutyTime: "09:00", InTime1: "09:20"}))
	repo.grace["2024-03-01"] = 10
	svc := NewAttendanceService(repo, seedEmployee(), 0, validator.New(), zap.NewNop())

	records, _, err := svc.List(context.Background(), models.AttendanceFilter{EmployeeID: "e1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Late)
}

func TestAttendanceListAppliesConfiguredPageSize(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, seedEmployee(), 50, validator.New(), zap.NewNop())

	_, pagination, err := svc.List(context.Background(), models.AttendanceFilter{EmployeeID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.PageSize)
	assert.Equal(t, 50, pagination.PageSize)

	_, pagination, err = svc.List(context.Background(), models.AttendanceFilter{EmployeeID: "e1", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastFilter.PageSize)
	assert.Equal(t, 10, pagination.PageSize)

	// A limit beyond one year of daily records falls back to the default.
	_, pagination, err = svc.List(context.Background(), models.AttendanceFilter{EmployeeID: "e1", PageSize: 400})
	require.NoError(t, err)
	assert.Equal(t, 50, pagination.PageSize)
}
