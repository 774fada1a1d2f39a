package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

func TestRosterListRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	shiftID := "s1"
	rows := sqlmock.NewRows([]string{"employee_id", "employee_name", "staff_id", "date", "shift_id", "shift_name", "shift_start", "shift_end", "shift_color", "grace_period", "shift_type_id", "shift_type_name", "location"}).
		AddRow("e1", "Jane Perera", "ST-001", "2024-03-01", &shiftID, "Morning", "08:00", "16:00", "#4caf50", 10, nil, "", "")
	mock.ExpectQuery("SELECT ra.employee_id, e.name AS employee_name,[\\s\\S]+FROM roster_assignments ra[\\s\\S]+WHERE ra.date >= \\$1 AND ra.date <= \\$2").
		WithArgs("2024-03-01", "2024-03-07").
		WillReturnRows(rows)

	assignments, err := repo.ListRange(context.Background(), "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "Morning", assignments[0].ShiftName)
	assert.Equal(t, 10, assignments[0].GracePeriod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectExec("INSERT INTO roster_assignments[\\s\\S]+ON CONFLICT \\(employee_id, date\\) DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	shiftID := "s1"
	assignment := &models.RosterAssignment{EmployeeID: "e1", Date: "2024-03-01", ShiftID: &shiftID}
	require.NoError(t, repo.Upsert(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectExec("DELETE FROM roster_assignments WHERE employee_id = \\$1 AND date = \\$2").
		WithArgs("e1", "2024-03-01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "e1", "2024-03-01"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
