package models

import "time"

// LeaveType enumerates the supported leave categories.
type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "Annual"
	LeaveTypeFRL    LeaveType = "FRL"
	LeaveTypeSick   LeaveType = "Sick"
)

// MaxLeavePlansPerEmployee caps how many plans one employee may hold.
const MaxLeavePlansPerEmployee = 3

// Valid reports whether the leave type is a supported value.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeFRL, LeaveTypeSick:
		return true
	default:
		return false
	}
}

// Quota returns the annual day allowance for the leave type.
func (t LeaveType) Quota() int {
	switch t {
	case LeaveTypeAnnual:
		return 30
	case LeaveTypeFRL:
		return 10
	case LeaveTypeSick:
		return 30
	default:
		return 0
	}
}

// LeavePlan is a single contiguous leave date range for an employee.
type LeavePlan struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	LeaveType  LeaveType `db:"leave_type" json:"leave_type"`
	StartDate  string    `db:"start_date" json:"start_date"`
	EndDate    string    `db:"end_date" json:"end_date"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LeavePlanDetail joins a plan with its employee name for listings.
type LeavePlanDetail struct {
	LeavePlan
	EmployeeName string `db:"employee_name" json:"employee_name"`
	Days         int    `db:"-" json:"days"`
}

// LeaveUsage summarises consumed versus allowed days for one type.
type LeaveUsage struct {
	LeaveType LeaveType `json:"leave_type"`
	UsedDays  int       `json:"used_days"`
	QuotaDays int       `json:"quota_days"`
}
