package models

import "time"

// Shift is a named time-of-day template assignable to roster cells.
// GracePeriod is the number of minutes after StartTime within which a
// first clock-in is not considered late.
type Shift struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Color       string    `db:"color" json:"color"`
	GracePeriod int       `db:"grace_period" json:"grace_period"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ShiftType is a location-tagged duty category, assignable to a cell
// independently of a shift.
type ShiftType struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RosterAssignment binds an employee and date to an optional shift and
// an optional shift type. A cell may carry neither, either, or both.
type RosterAssignment struct {
	ID          string    `db:"id" json:"id,omitempty"`
	EmployeeID  string    `db:"employee_id" json:"employee_id"`
	Date        string    `db:"date" json:"date"`
	ShiftID     *string   `db:"shift_id" json:"shift_id,omitempty"`
	ShiftTypeID *string   `db:"shift_type_id" json:"shift_type_id,omitempty"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at,omitempty"`
}

// RosterAssignmentDetail joins an assignment with its reference rows.
type RosterAssignmentDetail struct {
	EmployeeID    string  `db:"employee_id" json:"employee_id"`
	EmployeeName  string  `db:"employee_name" json:"employee_name"`
	StaffID       string  `db:"staff_id" json:"staff_id"`
	Date          string  `db:"date" json:"date"`
	ShiftID       *string `db:"shift_id" json:"shift_id,omitempty"`
	ShiftName     string  `db:"shift_name" json:"shift_name"`
	ShiftStart    string  `db:"shift_start" json:"shift_start"`
	ShiftEnd      string  `db:"shift_end" json:"shift_end"`
	ShiftColor    string  `db:"shift_color" json:"shift_color"`
	GracePeriod   int     `db:"grace_period" json:"grace_period"`
	ShiftTypeID   *string `db:"shift_type_id" json:"shift_type_id,omitempty"`
	ShiftTypeName string  `db:"shift_type_name" json:"shift_type_name"`
	Location      string  `db:"location" json:"location"`
}

// RosterCell is one (employee, date) slot in the roster grid.
type RosterCell struct {
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	ShiftID     *string `json:"shift_id,omitempty"`
	ShiftTypeID *string `json:"shift_type_id,omitempty"`
}

// RosterRow is one employee's cells across the requested date range.
type RosterRow struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	Cells        []RosterCell `json:"cells"`
}

// RosterGrid is the dense (employee x date) grid returned to clients.
type RosterGrid struct {
	Dates []string    `json:"dates"`
	Rows  []RosterRow `json:"rows"`
}
