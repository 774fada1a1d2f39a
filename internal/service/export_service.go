package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
	"github.com/kairos-hr/attendance-admin-api/pkg/export"
)

const sheetNameLimit = 31

var exportColumnWidths = []float64{12, 10, 10, 10, 10, 10, 10, 10, 8, 8, 20}

var exportHeaders = []string{
	"Date", "Duty Time",
	"First In", "First Out", "Second In", "Second Out", "Third In", "Third Out",
	"Medical", "Absent", "Remarks",
}

// ExportRequest bounds a workbook export. Either date may be empty, meaning
// unbounded on that side. An empty EmployeeID exports everyone.
type ExportRequest struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

// ExportResult carries a rendered workbook and its download filename.
type ExportResult struct {
	Filename string
	Content  []byte
}

// ExportService renders attendance workbooks and report datasets.
type ExportService struct {
	attendance attendanceRepository
	employees  employeeRepository
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(attendance attendanceRepository, employees employeeRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attendance: attendance, employees: employees, logger: logger}
}

// ExportWorkbook builds one xlsx workbook with a sheet per employee that has
// records inside the requested range. Employees without matching records get
// no sheet.
func (s *ExportService) ExportWorkbook(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	employees, err := s.exportTargets(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.ListRange(ctx, req.EmployeeID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	byEmployee := make(map[string][]models.AttendanceRecordDetail)
	for _, record := range records {
		byEmployee[record.EmployeeID] = append(byEmployee[record.EmployeeID], record)
	}

	workbook := excelize.NewFile()
	defer workbook.Close()
	wroteSheet := false
	usedSheets := make(map[string]bool)

	for _, employee := range employees {
		rows := byEmployee[employee.ID]
		if len(rows) == 0 {
			continue
		}
		sheet := uniqueSheetName(sheetName(employee.Name), usedSheets)
		if !wroteSheet {
			if err := workbook.SetSheetName(workbook.GetSheetName(0), sheet); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workbook")
			}
		} else if _, err := workbook.NewSheet(sheet); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workbook")
		}
		wroteSheet = true
		if err := s.writeSheet(workbook, sheet, employee, rows, req); err != nil {
			return nil, err
		}
	}

	if !wroteSheet {
		// keep the default sheet so the workbook remains valid
		_ = workbook.SetSheetName(workbook.GetSheetName(0), "Attendance")
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}
	return &ExportResult{Filename: exportFilename(req, employees), Content: buf.Bytes()}, nil
}

func (s *ExportService) exportTargets(ctx context.Context, employeeID string) ([]models.Employee, error) {
	if employeeID == "" {
		employees, err := s.employees.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
		}
		return employees, nil
	}
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return []models.Employee{*employee}, nil
}

func (s *ExportService) writeSheet(workbook *excelize.File, sheet string, employee models.Employee, rows []models.AttendanceRecordDetail, req ExportRequest) error {
	titleStyle, err := workbook.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workbook")
	}
	headerStyle, err := workbook.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workbook")
	}

	_ = workbook.SetCellValue(sheet, "A1", "Attendance Report")
	_ = workbook.MergeCell(sheet, "A1", "K1")
	_ = workbook.SetCellStyle(sheet, "A1", "K1", titleStyle)

	info := [][2]string{
		{"Name", employee.Name},
		{"Staff ID", employee.StaffID},
		{"Position", employee.Position},
		{"Department", employee.Department},
		{"Contact", employee.ContactNumber},
		{"Period", fmt.Sprintf("%s to %s", orPlaceholder(req.StartDate, "Start"), orPlaceholder(req.EndDate, "End"))},
	}
	for i, pair := range info {
		row := i + 3
		_ = workbook.SetCellValue(sheet, fmt.Sprintf("A%d", row), pair[0])
		_ = workbook.SetCellValue(sheet, fmt.Sprintf("B%d", row), pair[1])
	}

	headerRow := len(info) + 4
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = workbook.SetCellValue(sheet, cell, header)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRow)
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), headerRow)
	_ = workbook.SetCellStyle(sheet, firstHeader, lastHeader, headerStyle)

	for i, record := range rows {
		values := []string{
			displayDate(record.Date), record.DutyTime,
			record.InTime1, record.OutTime1, record.InTime2, record.OutTime2, record.InTime3, record.OutTime3,
			yesNo(record.Medical), yesNo(record.Absent), record.Remarks,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			_ = workbook.SetCellValue(sheet, cell, value)
		}
	}

	for i, width := range exportColumnWidths {
		column, _ := excelize.ColumnNumberToName(i + 1)
		_ = workbook.SetColWidth(sheet, column, column, width)
	}
	return nil
}

// AttendanceDataset flattens records into the shared export tabular shape,
// used by csv and pdf report jobs.
func (s *ExportService) AttendanceDataset(ctx context.Context, req ExportRequest) (export.Dataset, error) {
	records, err := s.attendance.ListRange(ctx, req.EmployeeID, req.StartDate, req.EndDate)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	names := make(map[string]string, len(employees))
	for _, employee := range employees {
		names[employee.ID] = employee.Name
	}

	dataset := export.Dataset{Headers: append([]string{"Employee"}, exportHeaders...)}
	for _, record := range records {
		row := map[string]string{
			"Employee":   names[record.EmployeeID],
			"Date":       displayDate(record.Date),
			"Duty Time":  record.DutyTime,
			"First In":   record.InTime1,
			"First Out":  record.OutTime1,
			"Second In":  record.InTime2,
			"Second Out": record.OutTime2,
			"Third In":   record.InTime3,
			"Third Out":  record.OutTime3,
			"Medical":    yesNo(record.Medical),
			"Absent":     yesNo(record.Absent),
			"Remarks":    record.Remarks,
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

func sheetName(name string) string {
	// excelize rejects sheet names containing :\/?*[] or longer than 31 chars.
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = "Employee"
	}
	if runes := []rune(cleaned); len(runes) > sheetNameLimit {
		cleaned = string(runes[:sheetNameLimit])
	}
	return cleaned
}

// uniqueSheetName suffixes a counter when two employees resolve to the same
// sheet name. Sheet names are case-insensitive in xlsx, so the tracking map
// keys on the lower-cased name.
func uniqueSheetName(base string, used map[string]bool) string {
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		runes := []rune(base)
		if len(runes)+len(suffix) > sheetNameLimit {
			runes = runes[:sheetNameLimit-len(suffix)]
		}
		name = string(runes) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func exportFilename(req ExportRequest, employees []models.Employee) string {
	subject := "report"
	if req.EmployeeID != "" && len(employees) == 1 {
		subject = strings.ReplaceAll(strings.TrimSpace(employees[0].Name), " ", "_")
	}
	start := orPlaceholder(req.StartDate, "start")
	end := orPlaceholder(req.EndDate, "end")
	return fmt.Sprintf("attendance_%s_%s_%s.xlsx", subject, start, end)
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// displayDate renders stored yyyy-MM-dd dates as dd/mm/yyyy for sheets.
func displayDate(value string) string {
	day, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return value
	}
	return day.Format("02/01/2006")
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
