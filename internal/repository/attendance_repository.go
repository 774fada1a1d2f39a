package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// duty_time falls back to the assigned shift's start when the record holds none.
const attendanceColumns = `a.id, a.employee_id, a.date::text AS date,
        COALESCE(NULLIF(a.duty_time, ''), sh.start_time, '') AS duty_time,
        COALESCE(a.in_time_1, '') AS in_time_1, COALESCE(a.out_time_1, '') AS out_time_1,
        COALESCE(a.in_time_2, '') AS in_time_2, COALESCE(a.out_time_2, '') AS out_time_2,
        COALESCE(a.in_time_3, '') AS in_time_3, COALESCE(a.out_time_3, '') AS out_time_3,
        a.medical, a.absent,
        COALESCE(a.remarks, '') AS remarks, a.created_at, a.updated_at`

// detail join pulls the shift grace period for the assigned roster day, default 0.
const attendanceDetailJoin = `LEFT JOIN roster_assignments ra ON ra.employee_id = a.employee_id AND ra.date = a.date
        LEFT JOIN shifts sh ON sh.id = ra.shift_id`

// List returns attendance records for a filter with roster-derived grace periods.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error) {
	base := fmt.Sprintf("FROM attendance_records a %s", attendanceDetailJoin)
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, filter.EndDate)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 366 {
		size = 30
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, COALESCE(sh.grace_period, 0) AS grace_period
        %s ORDER BY a.date %s LIMIT %d OFFSET %d`, attendanceColumns, base, order, size, offset)

	var records []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// ListByEmployee returns every record for one employee ordered by date ascending.
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecordDetail, error) {
	query := fmt.Sprintf(`SELECT %s, COALESCE(sh.grace_period, 0) AS grace_period
        FROM attendance_records a %s WHERE a.employee_id = $1 ORDER BY a.date ASC`, attendanceColumns, attendanceDetailJoin)
	var records []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, employeeID); err != nil {
		return nil, fmt.Errorf("list attendance by employee: %w", err)
	}
	return records, nil
}

// ListRange returns records for all employees within an optional date window,
// ordered by employee then date. Used by workbook exports.
func (r *AttendanceRepository) ListRange(ctx context.Context, employeeID, startDate, endDate string) ([]models.AttendanceRecordDetail, error) {
	base := fmt.Sprintf("FROM attendance_records a %s", attendanceDetailJoin)
	args := []interface{}{}
	conditions := []string{"1=1"}
	if employeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", len(args)+1))
		args = append(args, employeeID)
	}
	if startDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, startDate)
	}
	if endDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, endDate)
	}
	query := fmt.Sprintf(`SELECT %s, COALESCE(sh.grace_period, 0) AS grace_period
        %s WHERE %s ORDER BY a.employee_id ASC, a.date ASC`, attendanceColumns, base, strings.Join(conditions, " AND "))
	var records []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return records, nil
}

// Upsert inserts a record or updates the existing one for the same employee and date.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO attendance_records (id, employee_id, date, duty_time, in_time_1, out_time_1, in_time_2, out_time_2, in_time_3, out_time_3, medical, absent, remarks, created_at, updated_at)
        VALUES (:id, :employee_id, :date, :duty_time, :in_time_1, :out_time_1, :in_time_2, :out_time_2, :in_time_3, :out_time_3, :medical, :absent, :remarks, :created_at, :updated_at)
        ON CONFLICT (employee_id, date) DO UPDATE SET
            duty_time = EXCLUDED.duty_time, in_time_1 = EXCLUDED.in_time_1, out_time_1 = EXCLUDED.out_time_1,
            in_time_2 = EXCLUDED.in_time_2, out_time_2 = EXCLUDED.out_time_2, in_time_3 = EXCLUDED.in_time_3,
            out_time_3 = EXCLUDED.out_time_3, medical = EXCLUDED.medical, absent = EXCLUDED.absent,
            remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Update modifies an existing record by ID.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance_records SET date = :date, duty_time = :duty_time,
        in_time_1 = :in_time_1, out_time_1 = :out_time_1, in_time_2 = :in_time_2, out_time_2 = :out_time_2,
        in_time_3 = :in_time_3, out_time_3 = :out_time_3, medical = :medical, absent = :absent,
        remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// DeleteByDates removes an employee's records for the given dates.
func (r *AttendanceRepository) DeleteByDates(ctx context.Context, employeeID string, dates []string) error {
	if len(dates) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM attendance_records WHERE employee_id = ? AND date IN (?)", employeeID, dates)
	if err != nil {
		return fmt.Errorf("build delete attendance: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Delete removes one record by ID.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attendance_records WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	return nil
}
