package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type mockShiftRepo struct {
	shifts map[string]models.Shift
	types  map[string]models.ShiftType
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]models.Shift), types: make(map[string]models.ShiftType)}
}

func (m *mockShiftRepo) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var out []models.Shift
	for _, shift := range m.shifts {
		out = append(out, shift)
	}
	return out, nil
}

func (m *mockShiftRepo) FindShift(ctx context.Context, id string) (*models.Shift, error) {
	if shift, ok := m.shifts[id]; ok {
		return &shift, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockShiftRepo) CreateShift(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = "shift-1"
	}
	m.shifts[shift.ID] = *shift
	return nil
}

func (m *mockShiftRepo) UpdateShift(ctx context.Context, shift *models.Shift) error {
	m.shifts[shift.ID] = *shift
	return nil
}

func (m *mockShiftRepo) DeleteShift(ctx context.Context, id string) error {
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) ListShiftTypes(ctx context.Context) ([]models.ShiftType, error) {
	var out []models.ShiftType
	for _, shiftType := range m.types {
		out = append(out, shiftType)
	}
	return out, nil
}

func (m *mockShiftRepo) FindShiftType(ctx context.Context, id string) (*models.ShiftType, error) {
	if shiftType, ok := m.types[id]; ok {
		return &shiftType, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockShiftRepo) CreateShiftType(ctx context.Context, shiftType *models.ShiftType) error {
	if shiftType.ID == "" {
		shiftType.ID = "type-1"
	}
	m.types[shiftType.ID] = *shiftType
	return nil
}

func (m *mockShiftRepo) UpdateShiftType(ctx context.Context, shiftType *models.ShiftType) error {
	m.types[shiftType.ID] = *shiftType
	return nil
}

func (m *mockShiftRepo) DeleteShiftType(ctx context.Context, id string) error {
	delete(m.types, id)
	return nil
}

type mockRosterRepo struct {
	assignments map[string]models.RosterAssignment
	deleted     []string
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{assignments: make(map[string]models.RosterAssignment)}
}

func (m *mockRosterRepo) ListRange(ctx context.Context, startDate, endDate string) ([]models.RosterAssignmentDetail, error) {
	var out []models.RosterAssignmentDetail
	for _, assignment := range m.assignments {
		if assignment.Date < startDate || assignment.Date > endDate {
			continue
		}
		out = append(out, models.RosterAssignmentDetail{
			EmployeeID:  assignment.EmployeeID,
			Date:        assignment.Date,
			ShiftID:     assignment.ShiftID,
			ShiftTypeID: assignment.ShiftTypeID,
		})
	}
	return out, nil
}

func (m *mockRosterRepo) ListByDate(ctx context.Context, date string) ([]models.RosterAssignmentDetail, error) {
	return m.ListRange(ctx, date, date)
}

func (m *mockRosterRepo) Upsert(ctx context.Context, assignment *models.RosterAssignment) error {
	m.assignments[assignment.EmployeeID+"|"+assignment.Date] = *assignment
	return nil
}

func (m *mockRosterRepo) Delete(ctx context.Context, employeeID, date string) error {
	key := employeeID + "|" + date
	m.deleted = append(m.deleted, key)
	delete(m.assignments, key)
	return nil
}

func newRosterService(shifts *mockShiftRepo, roster *mockRosterRepo) *RosterService {
	return NewRosterService(shifts, roster, seedEmployee(), nil, validator.New(), zap.NewNop())
}

func TestRosterGridIsDense(t *testing.T) {
	roster := newMockRosterRepo()
	shiftID := "s1"
	require.NoError(t, roster.Upsert(context.Background(), &models.RosterAssignment{
		EmployeeID: "e1", Date: "2024-03-02", ShiftID: &shiftID,
	}))
	svc := newRosterService(newMockShiftRepo(), roster)

	grid, err := svc.Grid(context.Background(), RosterGridRequest{StartDate: "2024-03-01", EndDate: "2024-03-03"})
	require.NoError(t, err)
	require.Len(t, grid.Dates, 3)
	require.Len(t, grid.Rows, 1)
	require.Len(t, grid.Rows[0].Cells, 3)
	assert.Nil(t, grid.Rows[0].Cells[0].ShiftID)
	require.NotNil(t, grid.Rows[0].Cells[1].ShiftID)
	assert.Equal(t, "s1", *grid.Rows[0].Cells[1].ShiftID)
	assert.Nil(t, grid.Rows[0].Cells[2].ShiftID)
}

func TestRosterGridRejectsInvertedRange(t *testing.T) {
	svc := newRosterService(newMockShiftRepo(), newMockRosterRepo())

	_, err := svc.Grid(context.Background(), RosterGridRequest{StartDate: "2024-03-05", EndDate: "2024-03-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterSaveUpsertsAndClears(t *testing.T) {
	roster := newMockRosterRepo()
	svc := newRosterService(newMockShiftRepo(), roster)

	shiftID := "s1"
	saved, err := svc.Save(context.Background(), SaveRosterRequest{Cells: []models.RosterCell{
		{EmployeeID: "e1", Date: "2024-03-01", ShiftID: &shiftID},
		{EmployeeID: "e1", Date: "2024-03-02"},
	}}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Contains(t, roster.deleted, "e1|2024-03-02")
	assignment := roster.assignments["e1|2024-03-01"]
	assert.Equal(t, "admin", *assignment.CreatedBy)
}

func TestRosterSaveInvalidatesDashboardCache(t *testing.T) {
	roster := newMockRosterRepo()
	cacheRepo := &mockCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewRosterService(newMockShiftRepo(), roster, seedEmployee(), cache, validator.New(), zap.NewNop())

	shiftID := "s1"
	saved, err := svc.Save(context.Background(), SaveRosterRequest{Cells: []models.RosterCell{
		{EmployeeID: "e1", Date: "2024-03-01", ShiftID: &shiftID},
	}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Equal(t, []string{"dashboard:*"}, cacheRepo.invalidated)
}

func TestShiftCreateRequiresTimes(t *testing.T) {
	svc := newRosterService(newMockShiftRepo(), newMockRosterRepo())

	_, err := svc.CreateShift(context.Background(), ShiftRequest{Name: "Morning"}, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	shift, err := svc.CreateShift(context.Background(), ShiftRequest{
		Name: "Morning", StartTime: "08:00", EndTime: "16:00", GracePeriod: 15,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 15, shift.GracePeriod)
}
