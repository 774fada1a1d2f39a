package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
)

// ShiftRepository manages persistence for shifts and shift types.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListShifts returns all shifts ordered by start time.
func (r *ShiftRepository) ListShifts(ctx context.Context) ([]models.Shift, error) {
	const query = `SELECT id, name, COALESCE(description, '') AS description, start_time, end_time,
        COALESCE(color, '') AS color, grace_period, created_by, created_at
        FROM shifts ORDER BY start_time ASC, name ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// FindShift fetches one shift by ID.
func (r *ShiftRepository) FindShift(ctx context.Context, id string) (*models.Shift, error) {
	const query = `SELECT id, name, COALESCE(description, '') AS description, start_time, end_time,
        COALESCE(color, '') AS color, grace_period, created_by, created_at
        FROM shifts WHERE id = $1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// CreateShift inserts a new shift.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO shifts (id, name, description, start_time, end_time, color, grace_period, created_by, created_at)
        VALUES (:id, :name, :description, :start_time, :end_time, :color, :grace_period, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// UpdateShift modifies an existing shift.
func (r *ShiftRepository) UpdateShift(ctx context.Context, shift *models.Shift) error {
	const query = `UPDATE shifts SET name = :name, description = :description, start_time = :start_time,
        end_time = :end_time, color = :color, grace_period = :grace_period WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// DeleteShift removes a shift. Roster cells referencing it are nulled by the schema.
func (r *ShiftRepository) DeleteShift(ctx context.Context, id string) error {
	const query = `DELETE FROM shifts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return nil
}

// ListShiftTypes returns all shift types ordered by name.
func (r *ShiftRepository) ListShiftTypes(ctx context.Context) ([]models.ShiftType, error) {
	const query = `SELECT id, name, COALESCE(description, '') AS description, COALESCE(location, '') AS location, created_by, created_at
        FROM shift_types ORDER BY name ASC`
	var types []models.ShiftType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list shift types: %w", err)
	}
	return types, nil
}

// FindShiftType fetches one shift type by ID.
func (r *ShiftRepository) FindShiftType(ctx context.Context, id string) (*models.ShiftType, error) {
	const query = `SELECT id, name, COALESCE(description, '') AS description, COALESCE(location, '') AS location, created_by, created_at
        FROM shift_types WHERE id = $1`
	var shiftType models.ShiftType
	if err := r.db.GetContext(ctx, &shiftType, query, id); err != nil {
		return nil, err
	}
	return &shiftType, nil
}

// CreateShiftType inserts a new shift type.
func (r *ShiftRepository) CreateShiftType(ctx context.Context, shiftType *models.ShiftType) error {
	if shiftType.ID == "" {
		shiftType.ID = uuid.NewString()
	}
	if shiftType.CreatedAt.IsZero() {
		shiftType.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO shift_types (id, name, description, location, created_by, created_at)
        VALUES (:id, :name, :description, :location, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shiftType); err != nil {
		return fmt.Errorf("create shift type: %w", err)
	}
	return nil
}

// UpdateShiftType modifies an existing shift type.
func (r *ShiftRepository) UpdateShiftType(ctx context.Context, shiftType *models.ShiftType) error {
	const query = `UPDATE shift_types SET name = :name, description = :description, location = :location WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shiftType); err != nil {
		return fmt.Errorf("update shift type: %w", err)
	}
	return nil
}

// DeleteShiftType removes a shift type.
func (r *ShiftRepository) DeleteShiftType(ctx context.Context, id string) error {
	const query = `DELETE FROM shift_types WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete shift type: %w", err)
	}
	return nil
}
