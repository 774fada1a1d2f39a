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

func TestLeaveList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "employee_id", "leave_type", "start_date", "end_date", "created_by", "created_at", "employee_name"}).
		AddRow("l1", "e1", string(models.LeaveTypeAnnual), "2024-04-01", "2024-04-05", nil, now, "Jane Perera")
	mock.ExpectQuery("SELECT lp.id, lp.employee_id, lp.leave_type,[\\s\\S]+FROM leave_plans lp JOIN employees e ON e.id = lp.employee_id WHERE 1=1 AND lp.employee_id = \\$1").
		WithArgs("e1").
		WillReturnRows(rows)

	plans, err := repo.List(context.Background(), "e1", "", "", "")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, models.LeaveTypeAnnual, plans[0].LeaveType)
	assert.Equal(t, "Jane Perera", plans[0].EmployeeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("INSERT INTO leave_plans").WillReturnResult(sqlmock.NewResult(1, 1))

	plan := &models.LeavePlan{EmployeeID: "e1", LeaveType: models.LeaveTypeSick, StartDate: "2024-04-01", EndDate: "2024-04-02"}
	require.NoError(t, repo.Create(context.Background(), plan))
	assert.NotEmpty(t, plan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveCountOnDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT employee_id\\) FROM leave_plans[\\s\\S]+start_date <= \\$2 AND end_date >= \\$2").
		WithArgs(string(models.LeaveTypeSick), "2024-04-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountOnDate(context.Background(), models.LeaveTypeSick, "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveCountOnDateAllTypes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT employee_id\\) FROM leave_plans[\\s\\S]+\\(\\$1 = '' OR leave_type = \\$1\\)").
		WithArgs("", "2024-04-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountOnDate(context.Background(), "", "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("DELETE FROM leave_plans WHERE id = \\$1").
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
