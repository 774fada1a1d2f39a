package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

// RosterRepository manages persistence for roster assignments.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListRange returns assignments between two dates inclusive, with shift and
// shift type details joined in, ordered by employee then date.
func (r *RosterRepository) ListRange(ctx context.Context, startDate, endDate string) ([]models.RosterAssignmentDetail, error) {
	const query = `SELECT ra.employee_id, e.name AS employee_name, e.staff_id, ra.date::text AS date,
        ra.shift_id, COALESCE(sh.name, '') AS shift_name, COALESCE(sh.start_time, '') AS shift_start,
        COALESCE(sh.end_time, '') AS shift_end, COALESCE(sh.color, '') AS shift_color,
        COALESCE(sh.grace_period, 0) AS grace_period,
        ra.shift_type_id, COALESCE(st.name, '') AS shift_type_name, COALESCE(st.location, '') AS location
        FROM roster_assignments ra
        JOIN employees e ON e.id = ra.employee_id
        LEFT JOIN shifts sh ON sh.id = ra.shift_id
        LEFT JOIN shift_types st ON st.id = ra.shift_type_id
        WHERE ra.date >= $1 AND ra.date <= $2
        ORDER BY e.name ASC, ra.date ASC`
	var assignments []models.RosterAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, startDate, endDate); err != nil {
		return nil, fmt.Errorf("list roster range: %w", err)
	}
	return assignments, nil
}

// ListByDate returns the joined assignments for a single day.
func (r *RosterRepository) ListByDate(ctx context.Context, date string) ([]models.RosterAssignmentDetail, error) {
	return r.ListRange(ctx, date, date)
}

// Upsert inserts or replaces the assignment for an employee and date.
func (r *RosterRepository) Upsert(ctx context.Context, assignment *models.RosterAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO roster_assignments (id, employee_id, date, shift_id, shift_type_id, created_by, created_at)
        VALUES (:id, :employee_id, :date, :shift_id, :shift_type_id, :created_by, :created_at)
        ON CONFLICT (employee_id, date) DO UPDATE SET
            shift_id = EXCLUDED.shift_id, shift_type_id = EXCLUDED.shift_type_id, created_by = EXCLUDED.created_by`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("upsert roster assignment: %w", err)
	}
	return nil
}

// Delete removes the assignment for an employee and date.
func (r *RosterRepository) Delete(ctx context.Context, employeeID, date string) error {
	const query = `DELETE FROM roster_assignments WHERE employee_id = $1 AND date = $2`
	if _, err := r.db.ExecContext(ctx, query, employeeID, date); err != nil {
		return fmt.Errorf("delete roster assignment: %w", err)
	}
	return nil
}
