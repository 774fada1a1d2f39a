package dto

// DashboardSummaryResponse captures the aggregated admin dashboard payload.
type DashboardSummaryResponse struct {
	TotalStaff     int `json:"totalStaff"`
	OnLeaveToday   int `json:"onLeaveToday"`
	SickToday      int `json:"sickToday"`
	FRLToday       int `json:"frlToday"`
	OnLeaveMonth   int `json:"onLeaveMonth"`
	SickMonth      int `json:"sickMonth"`
	FRLMonth       int `json:"frlMonth"`
	RosteredToday  int `json:"rosteredToday"`
	LeavePlansOpen int `json:"leavePlansOpen"`
}

// DashboardCalendarResponse lists per-day leave counts for a month.
type DashboardCalendarResponse struct {
	Month string                `json:"month"`
	Days  []DashboardDaySummary `json:"days"`
}

// DashboardDaySummary counts leave per day, split by type.
type DashboardDaySummary struct {
	Date   string `json:"date"`
	Annual int    `json:"annual"`
	Sick   int    `json:"sick"`
	FRL    int    `json:"frl"`
}

// DashboardRosterEntry is one employee's duty assignment for today.
type DashboardRosterEntry struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	StaffID      string  `json:"staffId"`
	ShiftName    *string `json:"shiftName,omitempty"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	Location     *string `json:"location,omitempty"`
}
