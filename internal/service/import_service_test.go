package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/kairos-hr/attendance-admin-api/pkg/errors"
)

func buildImportSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, workbook.SetCellValue(sheet, cell, value))
		}
	}
	buf, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var importHeader = []interface{}{"ID Number", "Name", "Date", "Duty Time", "IN", "OUT", "IN", "OUT", "IN", "OUT"}

func TestImportMatchesCaseInsensitively(t *testing.T) {
	employees := seedEmployee()
	attendance := newMockAttendanceRepo()
	svc := NewImportService(attendance, employees, zap.NewNop())

	buf := buildImportSheet(t, [][]interface{}{
		importHeader,
		{"ST-001", "jane perera", "2024-03-01", "08:00", "08:05", "17:00"},
		{"ST-999", "Nobody", "2024-03-01", "08:00", "08:05", "17:00"},
	})

	summary, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowsRead)
	assert.Equal(t, 1, summary.RowsMatched)
	assert.Equal(t, 1, summary.RowsDropped)
	assert.Equal(t, 1, summary.RecordsWritten)

	record := attendance.byDate["e1"]["2024-03-01"]
	assert.Equal(t, "08:05", record.InTime1)
}

func TestImportNoMatchesAborts(t *testing.T) {
	attendance := newMockAttendanceRepo()
	svc := NewImportService(attendance, seedEmployee(), zap.NewNop())

	buf := buildImportSheet(t, [][]interface{}{
		importHeader,
		{"XX-1", "Stranger", "2024-03-01", "", "08:00", "17:00"},
	})

	_, err := svc.Import(context.Background(), buf)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoMatchingRows.Code, appErrors.FromError(err).Code)
	assert.Empty(t, attendance.byDate)
}

func TestImportLastRowWinsPerDate(t *testing.T) {
	attendance := newMockAttendanceRepo()
	svc := NewImportService(attendance, seedEmployee(), zap.NewNop())

	buf := buildImportSheet(t, [][]interface{}{
		importHeader,
		{"ST-001", "Jane Perera", "2024-03-01", "", "08:00", "17:00"},
		{"ST-001", "Jane Perera", "2024-03-01", "", "08:30", "17:30"},
	})

	summary, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecordsWritten)
	assert.Equal(t, "08:30", attendance.byDate["e1"]["2024-03-01"].InTime1)
}

func TestImportRepeatedInOutHeaders(t *testing.T) {
	attendance := newMockAttendanceRepo()
	svc := NewImportService(attendance, seedEmployee(), zap.NewNop())

	buf := buildImportSheet(t, [][]interface{}{
		importHeader,
		{"ST-001", "Jane Perera", "2024-03-01", "08:00", "08:05", "12:00", "13:00", "17:00", "18:00", "19:00"},
	})

	_, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	record := attendance.byDate["e1"]["2024-03-01"]
	assert.Equal(t, "13:00", record.InTime2)
	assert.Equal(t, "17:00", record.OutTime2)
	assert.Equal(t, "18:00", record.InTime3)
	assert.Equal(t, "19:00", record.OutTime3)
}

func TestNormalizeTime(t *testing.T) {
	assert.Equal(t, "09:30", normalizeTime("9.5"))
	assert.Equal(t, "09:15", normalizeTime("09:15"))
	assert.Equal(t, "08:00", normalizeTime("8"))
	assert.Equal(t, "", normalizeTime("  "))
	assert.Equal(t, "morning", normalizeTime("morning"))
}

func TestTruthyCell(t *testing.T) {
	assert.True(t, truthyCell("Yes"))
	assert.True(t, truthyCell("TRUE"))
	assert.False(t, truthyCell(""))
	assert.False(t, truthyCell("no"))
}

func TestNormalizeDate(t *testing.T) {
	date, ok := normalizeDate("01/03/2024")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)

	// serial 45352 is 2024-03-01 against the 1899-12-30 epoch
	date, ok = normalizeDate("45352")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)

	date, ok = normalizeDate("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)

	raw, ok := normalizeDate("not a date")
	assert.False(t, ok)
	assert.Equal(t, "not a date", raw)
}
