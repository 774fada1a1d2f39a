package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

type mockEmployeeRepo struct {
	employees map[string]models.Employee
	deleted   []string
	err       error
}

func (m *mockEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *mockEmployeeRepo) ListAll(ctx context.Context) ([]models.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	all := make([]models.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		all = append(all, employee)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *mockEmployeeRepo) Count(ctx context.Context) (int, error) {
	return len(m.employees), m.err
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if employee, ok := m.employees[id]; ok {
		return &employee, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEmployeeRepo) ExistsByStaffID(ctx context.Context, staffID string, excludeID string) (bool, error) {
	for _, employee := range m.employees {
		if employee.StaffID == staffID && employee.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	if m.employees == nil {
		m.employees = make(map[string]models.Employee)
	}
	if employee.ID == "" {
		employee.ID = "generated"
	}
	m.employees[employee.ID] = *employee
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	m.employees[employee.ID] = *employee
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.employees, id)
	return nil
}

func TestEmployeeServiceCreate(t *testing.T) {
	repo := &mockEmployeeRepo{}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	employee, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:       "Jane Perera",
		StaffID:    "ST-001",
		Department: "Ward A",
		JoinedDate: "2023-01-15",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, employee.ID)
	assert.Equal(t, 1, len(repo.employees))
}

func TestEmployeeServiceCreateDuplicateStaffID(t *testing.T) {
	repo := &mockEmployeeRepo{employees: map[string]models.Employee{
		"e1": {ID: "e1", Name: "Jane Perera", StaffID: "ST-001"},
	}}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{Name: "Other", StaffID: "ST-001"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEmployeeServiceCreateFutureJoinedDate(t *testing.T) {
	repo := &mockEmployeeRepo{}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:       "Jane Perera",
		StaffID:    "ST-001",
		JoinedDate: "2999-01-01",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.employees)
}

func TestEmployeeServiceUpdateKeepsOwnStaffID(t *testing.T) {
	repo := &mockEmployeeRepo{employees: map[string]models.Employee{
		"e1": {ID: "e1", Name: "Jane Perera", StaffID: "ST-001"},
	}}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	employee, err := svc.Update(context.Background(), "e1", UpdateEmployeeRequest{Name: "Jane P", StaffID: "ST-001"})
	require.NoError(t, err)
	assert.Equal(t, "Jane P", employee.Name)
}

func TestEmployeeServiceDeleteMissing(t *testing.T) {
	repo := &mockEmployeeRepo{}
	svc := NewEmployeeService(repo, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "nope")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEmployeeWritesInvalidateDashboardCache(t *testing.T) {
	repo := &mockEmployeeRepo{}
	cacheRepo := &mockCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewEmployeeService(repo, cache, validator.New(), zap.NewNop())

	employee, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:    "Jane Perera",
		StaffID: "ST-001",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard:*"}, cacheRepo.invalidated)

	require.NoError(t, svc.Delete(context.Background(), employee.ID))
	assert.Equal(t, []string{"dashboard:*", "dashboard:*"}, cacheRepo.invalidated)
}
