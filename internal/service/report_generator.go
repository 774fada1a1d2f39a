package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kairos-hr/attendance-admin-api/internal/models"
	"github.com/kairos-hr/attendance-admin-api/pkg/export"
	"github.com/kairos-hr/attendance-admin-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// GeneratorConfig tunes report file generation.
type GeneratorConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// GeneratedReport captures successful generation metadata.
type GeneratedReport struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ReportGenerator renders report jobs into stored files with signed URLs.
type ReportGenerator struct {
	exports *ExportService
	roster  rosterRepository
	leaves  leaveRepository
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     GeneratorConfig
}

// NewReportGenerator constructs a ReportGenerator.
func NewReportGenerator(exports *ExportService, roster rosterRepository, leaves leaveRepository, fileStore fileStorage, signer *storage.SignedURLSigner, cfg GeneratorConfig, logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportGenerator{
		exports: exports,
		roster:  roster,
		leaves:  leaves,
		storage: fileStore,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the job payload and stores it under a signed token.
func (g *ReportGenerator) Generate(ctx context.Context, job *models.ReportJob) (*GeneratedReport, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	payload, err := g.render(ctx, job)
	if err != nil {
		return nil, err
	}

	relPath, err := g.storage.Save(g.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := g.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(g.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &GeneratedReport{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (g *ReportGenerator) render(ctx context.Context, job *models.ReportJob) ([]byte, error) {
	req := ExportRequest{
		StartDate: job.Params.StartDate,
		EndDate:   job.Params.EndDate,
	}
	if job.Params.EmployeeID != nil {
		req.EmployeeID = *job.Params.EmployeeID
	}

	switch job.Type {
	case models.ReportTypeAttendance:
		switch job.Params.Format {
		case models.ReportFormatXLSX:
			result, err := g.exports.ExportWorkbook(ctx, req)
			if err != nil {
				return nil, err
			}
			return result.Content, nil
		case models.ReportFormatCSV:
			dataset, err := g.exports.AttendanceDataset(ctx, req)
			if err != nil {
				return nil, err
			}
			return g.csv.Render(dataset)
		}
	case models.ReportTypeRoster:
		if job.Params.Format == models.ReportFormatPDF {
			dataset, err := g.rosterDataset(ctx, req)
			if err != nil {
				return nil, err
			}
			title := fmt.Sprintf("Duty Roster %s to %s", orPlaceholder(req.StartDate, "start"), orPlaceholder(req.EndDate, "end"))
			return g.pdf.Render(dataset, title)
		}
	case models.ReportTypeLeave:
		if job.Params.Format == models.ReportFormatCSV {
			dataset, err := g.leaveDataset(ctx, req)
			if err != nil {
				return nil, err
			}
			return g.csv.Render(dataset)
		}
	}
	return nil, fmt.Errorf("unsupported report %s/%s", job.Type, job.Params.Format)
}

func (g *ReportGenerator) rosterDataset(ctx context.Context, req ExportRequest) (export.Dataset, error) {
	start := req.StartDate
	end := req.EndDate
	if start == "" {
		start = time.Now().UTC().Format(models.DateLayout)
	}
	if end == "" {
		end = start
	}
	assignments, err := g.roster.ListRange(ctx, start, end)
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{Headers: []string{"Date", "Employee", "Staff ID", "Shift", "Start", "End", "Type", "Location"}}
	for _, assignment := range assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     displayDate(assignment.Date),
			"Employee": assignment.EmployeeName,
			"Staff ID": assignment.StaffID,
			"Shift":    assignment.ShiftName,
			"Start":    assignment.ShiftStart,
			"End":      assignment.ShiftEnd,
			"Type":     assignment.ShiftTypeName,
			"Location": assignment.Location,
		})
	}
	return dataset, nil
}

func (g *ReportGenerator) leaveDataset(ctx context.Context, req ExportRequest) (export.Dataset, error) {
	plans, err := g.leaves.List(ctx, req.EmployeeID, "", req.StartDate, req.EndDate)
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{Headers: []string{"Employee", "Type", "Start", "End", "Days"}}
	for _, plan := range plans {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Employee": plan.EmployeeName,
			"Type":     string(plan.LeaveType),
			"Start":    displayDate(plan.StartDate),
			"End":      displayDate(plan.EndDate),
			"Days":     fmt.Sprintf("%d", calculateLeaveDays(plan.StartDate, plan.EndDate)),
		})
	}
	return dataset, nil
}

// ParseToken validates download token metadata.
func (g *ReportGenerator) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return g.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (g *ReportGenerator) Open(relPath string) (*os.File, error) {
	return g.storage.Open(relPath)
}

// Delete removes a stored report file.
func (g *ReportGenerator) Delete(relPath string) error {
	return g.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured TTL.
func (g *ReportGenerator) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = g.cfg.ResultTTL
	}
	return g.storage.CleanupOlderThan(ttl)
}

func (g *ReportGenerator) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Params.Format)
}
