package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

func employeeRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "staff_id", "position", "department", "contact_number", "joined_date", "created_at", "updated_at"}).
		AddRow("e1", "Jane Perera", "ST-001", "Nurse", "Ward A", "0771234567", "2023-01-15", now, now)
}

func TestEmployeeList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, staff_id, .+ FROM employees WHERE 1=1 AND \\(LOWER\\(name\\) LIKE \\$1 OR LOWER\\(staff_id\\) LIKE \\$1\\) ORDER BY name ASC LIMIT 20 OFFSET 0").
		WithArgs("%jane%").
		WillReturnRows(employeeRows(now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM employees WHERE 1=1").
		WithArgs("%jane%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	employees, total, err := repo.List(context.Background(), models.EmployeeFilter{Search: "Jane"})
	require.NoError(t, err)
	assert.Len(t, employees, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "ST-001", employees[0].StaffID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeExistsByStaffID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("SELECT 1 FROM employees WHERE staff_id = \\$1 LIMIT 1").
		WithArgs("ST-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByStaffID(context.Background(), "ST-001", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").WillReturnResult(sqlmock.NewResult(1, 1))

	employee := &models.Employee{Name: "Jane Perera", StaffID: "ST-001", JoinedDate: "2023-01-15"}
	err := repo.Create(context.Background(), employee)
	require.NoError(t, err)
	assert.NotEmpty(t, employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("DELETE FROM employees WHERE id = \\$1").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
