package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

// ImportSummary reports the outcome of one spreadsheet import.
type ImportSummary struct {
	RowsRead         int      `json:"rows_read"`
	RowsMatched      int      `json:"rows_matched"`
	RowsDropped      int      `json:"rows_dropped"`
	EmployeesMatched int      `json:"employees_matched"`
	RecordsWritten   int      `json:"records_written"`
	UnparsedDates    []string `json:"unparsed_dates,omitempty"`
}

// ImportService parses timecard spreadsheets into attendance records.
type ImportService struct {
	attendance attendanceRepository
	employees  employeeRepository
	logger     *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(attendance attendanceRepository, employees employeeRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{attendance: attendance, employees: employees, logger: logger}
}

// Import reads the first sheet of an xlsx upload, matches rows to employees
// and upserts one record per (employee, date). Rows that match no employee
// are dropped; a file with zero matching rows is rejected before any write.
func (s *ImportService) Import(ctx context.Context, file io.Reader) (*ImportSummary, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable spreadsheet")
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet has no sheets")
	}
	rows, err := workbook.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable sheet")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet has no data rows")
	}

	headers := suffixDuplicateHeaders(rows[0])

	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	byStaffAndName := make(map[string]models.Employee, len(employees))
	for _, employee := range employees {
		byStaffAndName[matchKey(employee.StaffID, employee.Name)] = employee
	}

	summary := &ImportSummary{}
	grouped := make(map[string]map[string]models.AttendanceRecord)

	for _, raw := range rows[1:] {
		fields := rowToFields(headers, raw)
		if isEmptyRow(fields) {
			continue
		}
		summary.RowsRead++

		employee, ok := byStaffAndName[matchKey(fields["ID Number"], fields["Name"])]
		if !ok {
			summary.RowsDropped++
			continue
		}
		summary.RowsMatched++

		date, parsed := normalizeDate(fields["Date"])
		if !parsed {
			summary.UnparsedDates = append(summary.UnparsedDates, date)
			s.logger.Warn("unparseable date cell kept raw", zap.String("value", date), zap.String("staff_id", employee.StaffID))
		}

		record := models.AttendanceRecord{
			EmployeeID: employee.ID,
			Date:       date,
			DutyTime:   normalizeTime(fields["Duty Time"]),
			InTime1:    normalizeTime(fields["IN"]),
			OutTime1:   normalizeTime(fields["OUT"]),
			InTime2:    normalizeTime(fields["IN.1"]),
			OutTime2:   normalizeTime(fields["OUT.1"]),
			InTime3:    normalizeTime(fields["IN.2"]),
			OutTime3:   normalizeTime(fields["OUT.2"]),
			Medical:    truthyCell(fields["Medical"]),
			Absent:     truthyCell(fields["Absent"]),
			Remarks:    strings.TrimSpace(fields["Remarks"]),
		}

		perDate, ok := grouped[employee.ID]
		if !ok {
			perDate = make(map[string]models.AttendanceRecord)
			grouped[employee.ID] = perDate
		}
		// last row wins for a repeated date within the same file
		perDate[record.Date] = record
	}

	if summary.RowsMatched == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoMatchingRows, "no rows matched existing employees")
	}

	summary.EmployeesMatched = len(grouped)
	employeeIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	for _, employeeID := range employeeIDs {
		perDate := grouped[employeeID]
		dates := make([]string, 0, len(perDate))
		for date := range perDate {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			record := perDate[date]
			if err := s.attendance.Upsert(ctx, &record); err != nil {
				return summary, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
					fmt.Sprintf("failed to save record for %s", date))
			}
			summary.RecordsWritten++
		}
	}
	return summary, nil
}

// suffixDuplicateHeaders renames repeated header cells IN, IN.1, IN.2 so
// repeated in/out column pairs stay addressable.
func suffixDuplicateHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if count, ok := seen[name]; ok {
			seen[name] = count + 1
			out[i] = fmt.Sprintf("%s.%d", name, count)
			continue
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

func rowToFields(headers []string, row []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(row) {
			fields[header] = row[i]
		} else {
			fields[header] = ""
		}
	}
	return fields
}

func isEmptyRow(fields map[string]string) bool {
	for _, value := range fields {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// truthyCell reads spreadsheet yes/no markers as booleans.
func truthyCell(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "y", "1":
		return true
	default:
		return false
	}
}

func matchKey(staffID, name string) string {
	return strings.TrimSpace(staffID) + "\x00" + strings.ToLower(strings.TrimSpace(name))
}

// excel serials count days from 1899-12-30
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var genericDateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// normalizeDate reduces a date cell to yyyy-MM-dd. The second return is false
// when the value could not be parsed and is returned raw.
func normalizeDate(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		day := excelEpoch.Add(time.Duration(int64(serial)) * 24 * time.Hour)
		return day.Format(models.DateLayout), true
	}
	if strings.Contains(trimmed, "/") {
		if day, err := time.Parse("02/01/2006", trimmed); err == nil {
			return day.Format(models.DateLayout), true
		}
		return trimmed, false
	}
	for _, layout := range genericDateLayouts {
		if day, err := time.Parse(layout, trimmed); err == nil {
			return day.Format(models.DateLayout), true
		}
	}
	return trimmed, false
}

// normalizeTime turns a pure-number cell into HH:mm decimal hours; anything
// else passes through trimmed.
func normalizeTime(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if hours, err := strconv.ParseFloat(trimmed, 64); err == nil {
		minutes := int(math.Round(hours * 60))
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	}
	return trimmed
}
