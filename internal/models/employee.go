package models

import "time"

// Employee represents a staff member managed through the admin console.
type Employee struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	StaffID       string    `db:"staff_id" json:"staff_id"`
	Position      string    `db:"position" json:"position"`
	Department    string    `db:"department" json:"department"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	JoinedDate    string    `db:"joined_date" json:"joined_date,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
