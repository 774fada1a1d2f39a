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

func attendanceDetailRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "date", "duty_time", "in_time_1", "out_time_1", "in_time_2", "out_time_2", "in_time_3", "out_time_3", "medical", "absent", "remarks", "created_at", "updated_at", "grace_period"}).
		AddRow("a1", "e1", "2024-03-01", "08:00", "08:05", "12:00", "13:00", "17:00", "", "", false, false, "", now, now, 15)
}

func TestAttendanceListByEmployee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT a.id, a.employee_id, a.date::text AS date,[\\s\\S]+FROM attendance_records a[\\s\\S]+WHERE a.employee_id = \\$1 ORDER BY a.date ASC").
		WithArgs("e1").
		WillReturnRows(attendanceDetailRows(now))

	records, err := repo.ListByEmployee(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-03-01", records[0].Date)
	assert.Equal(t, 15, records[0].GracePeriod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records[\\s\\S]+ON CONFLICT \\(employee_id, date\\) DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-01", InTime1: "08:05"}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceDeleteByDates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("DELETE FROM attendance_records WHERE employee_id = \\$1 AND date IN \\(\\$2, \\$3\\)").
		WithArgs("e1", "2024-03-01", "2024-03-02").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.DeleteByDates(context.Background(), "e1", []string{"2024-03-01", "2024-03-02"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceDeleteByDatesEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	require.NoError(t, repo.DeleteByDates(context.Background(), "e1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
