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

// LeaveRepository manages persistence for leave plans.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `lp.id, lp.employee_id, lp.leave_type, lp.start_date::text AS start_date, lp.end_date::text AS end_date,
        lp.created_by, lp.created_at, e.name AS employee_name`

// List returns leave plans overlapping an optional window, newest first.
func (r *LeaveRepository) List(ctx context.Context, employeeID string, leaveType models.LeaveType, startDate, endDate string) ([]models.LeavePlanDetail, error) {
	base := "FROM leave_plans lp JOIN employees e ON e.id = lp.employee_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if employeeID != "" {
		conditions = append(conditions, fmt.Sprintf("lp.employee_id = $%d", len(args)+1))
		args = append(args, employeeID)
	}
	if leaveType != "" {
		conditions = append(conditions, fmt.Sprintf("lp.leave_type = $%d", len(args)+1))
		args = append(args, leaveType)
	}
	if startDate != "" {
		conditions = append(conditions, fmt.Sprintf("lp.end_date >= $%d", len(args)+1))
		args = append(args, startDate)
	}
	if endDate != "" {
		conditions = append(conditions, fmt.Sprintf("lp.start_date <= $%d", len(args)+1))
		args = append(args, endDate)
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY lp.start_date DESC, e.name ASC",
		leaveColumns, base, strings.Join(conditions, " AND "))

	var plans []models.LeavePlanDetail
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list leave plans: %w", err)
	}
	return plans, nil
}

// ListByEmployee returns every plan for one employee ordered by start date.
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.LeavePlan, error) {
	const query = `SELECT id, employee_id, leave_type, start_date::text AS start_date, end_date::text AS end_date, created_by, created_at
        FROM leave_plans WHERE employee_id = $1 ORDER BY start_date ASC`
	var plans []models.LeavePlan
	if err := r.db.SelectContext(ctx, &plans, query, employeeID); err != nil {
		return nil, fmt.Errorf("list employee leave plans: %w", err)
	}
	return plans, nil
}

// FindByID fetches one plan by ID.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeavePlan, error) {
	const query = `SELECT id, employee_id, leave_type, start_date::text AS start_date, end_date::text AS end_date, created_by, created_at
        FROM leave_plans WHERE id = $1`
	var plan models.LeavePlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a new leave plan.
func (r *LeaveRepository) Create(ctx context.Context, plan *models.LeavePlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO leave_plans (id, employee_id, leave_type, start_date, end_date, created_by, created_at)
        VALUES (:id, :employee_id, :leave_type, :start_date, :end_date, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create leave plan: %w", err)
	}
	return nil
}

// Delete removes a plan by ID.
func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leave_plans WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete leave plan: %w", err)
	}
	return nil
}

// CountOnDate counts employees with a plan spanning a date. An empty leave
// type counts plans of every type.
func (r *LeaveRepository) CountOnDate(ctx context.Context, leaveType models.LeaveType, date string) (int, error) {
	const query = `SELECT COUNT(DISTINCT employee_id) FROM leave_plans
        WHERE ($1 = '' OR leave_type = $1) AND start_date <= $2 AND end_date >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, leaveType, date); err != nil {
		return 0, fmt.Errorf("count leave on date: %w", err)
	}
	return count, nil
}

// CountOverlapping counts employees with a plan overlapping a window. An empty
// leave type counts plans of every type.
func (r *LeaveRepository) CountOverlapping(ctx context.Context, leaveType models.LeaveType, startDate, endDate string) (int, error) {
	const query = `SELECT COUNT(DISTINCT employee_id) FROM leave_plans
        WHERE ($1 = '' OR leave_type = $1) AND start_date <= $3 AND end_date >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, leaveType, startDate, endDate); err != nil {
		return 0, fmt.Errorf("count leave overlapping: %w", err)
	}
	return count, nil
}

// ListOverlapping returns plans of any type overlapping a window, used to build
// per-day calendars.
func (r *LeaveRepository) ListOverlapping(ctx context.Context, startDate, endDate string) ([]models.LeavePlan, error) {
	const query = `SELECT id, employee_id, leave_type, start_date::text AS start_date, end_date::text AS end_date, created_by, created_at
        FROM leave_plans WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date ASC`
	var plans []models.LeavePlan
	if err := r.db.SelectContext(ctx, &plans, query, startDate, endDate); err != nil {
		return nil, fmt.Errorf("list overlapping leave plans: %w", err)
	}
	return plans, nil
}
