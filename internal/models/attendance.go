package models

import "time"

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical wire format for times of day.
const TimeLayout = "15:04"

// AttendanceRecord is one day of clock activity for an employee.
// At most one record exists per (employee, date). Empty time fields
// mean the corresponding punch did not happen.
type AttendanceRecord struct {
	ID         string    `db:"id" json:"id,omitempty"`
	EmployeeID string    `db:"employee_id" json:"employee_id,omitempty"`
	Date       string    `db:"date" json:"date"`
	DutyTime   string    `db:"duty_time" json:"duty_time"`
	InTime1    string    `db:"in_time_1" json:"in_time_1"`
	OutTime1   string    `db:"out_time_1" json:"out_time_1"`
	InTime2    string    `db:"in_time_2" json:"in_time_2"`
	OutTime2   string    `db:"out_time_2" json:"out_time_2"`
	InTime3    string    `db:"in_time_3" json:"in_time_3"`
	OutTime3   string    `db:"out_time_3" json:"out_time_3"`
	Medical    bool      `db:"medical" json:"medical"`
	Absent     bool      `db:"absent" json:"absent"`
	Remarks    string    `db:"remarks" json:"remarks"`
	CreatedAt  time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// AttendanceRecordDetail enriches a record with roster-derived fields.
// GracePeriod comes from the shift assigned for that date, never from
// the record itself; Late is computed at read time for display.
type AttendanceRecordDetail struct {
	AttendanceRecord
	GracePeriod int  `db:"grace_period" json:"grace_period"`
	Late        bool `db:"-" json:"late"`
}

// AttendanceFilter bounds attendance listings and exports.
type AttendanceFilter struct {
	EmployeeID string
	StartDate  string
	EndDate    string
	SortOrder  string
	Page       int
	PageSize   int
}

// EmployeeAttendance groups an employee with their attendance records.
type EmployeeAttendance struct {
	Employee Employee                 `json:"employee"`
	Records  []AttendanceRecordDetail `json:"records"`
}
