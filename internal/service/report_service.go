package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/export"
	"github.com/edupulse/presence-api/pkg/storage"
)

type reportRepository interface {
	Insert(ctx context.Context, report *models.Report) error
	List(ctx context.Context, limit int) ([]models.Report, error)
}

type attendanceSheetReader interface {
	ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error)
}

// ReportService accepts problem reports and renders attendance sheets for
// export, either streamed directly or archived behind a signed link.
type ReportService struct {
	reports    reportRepository
	attendance attendanceSheetReader
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	archive    *storage.Archive
	signer     *storage.LinkSigner
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewReportService constructs the report service. Archive and signer may be
// nil; sheet links are then disabled while direct export keeps working.
func NewReportService(reports reportRepository, attendance attendanceSheetReader, archive *storage.Archive, signer *storage.LinkSigner, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:    reports,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		archive:    archive,
		signer:     signer,
		validator:  validate,
		logger:     logger,
	}
}

// SubmitReportRequest is the problem report payload.
type SubmitReportRequest struct {
	StudentIndex *string `json:"student_index"`
	Subject      string  `json:"subject" validate:"required,max=200"`
	Body         string  `json:"body" validate:"required,max=4000"`
}

// Submit stores a problem report.
func (s *ReportService) Submit(ctx context.Context, req SubmitReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	report := &models.Report{
		StudentIndex: req.StudentIndex,
		Subject:      req.Subject,
		Body:         req.Body,
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store report")
	}
	s.logger.Info("problem report submitted", zap.String("report_id", report.ID))
	return report, nil
}

// List returns recent reports.
func (s *ReportService) List(ctx context.Context, limit int) ([]models.Report, error) {
	reports, err := s.reports.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list reports")
	}
	return reports, nil
}

// ExportFormat selects the attendance sheet rendering.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// AttendanceSheet renders the attendance list of one occurrence as CSV or
// PDF. Returns the payload and its content type.
func (s *ReportService) AttendanceSheet(ctx context.Context, occurrenceID string, format ExportFormat) ([]byte, string, error) {
	rows, err := s.attendance.ListByOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance sheet")
	}

	data := export.Dataset{
		Headers: []string{"Student Index", "Student Name", "Arrival Time", "Status", "Note"},
	}
	for _, row := range rows {
		note := ""
		if row.ProximityNote != nil {
			note = *row.ProximityNote
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student Index": row.StudentIndex,
			"Student Name":  row.StudentName,
			"Arrival Time":  row.ArrivalTime.Format(time.RFC3339),
			"Status":        string(row.Status),
			"Note":          note,
		})
	}

	switch ExportFormat(strings.ToLower(string(format))) {
	case FormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return payload, "text/csv", nil
	case FormatPDF:
		title := fmt.Sprintf("Attendance sheet %s", occurrenceID)
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// SheetLink grants time-limited access to an archived sheet.
type SheetLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ArchiveSheet renders the sheet, stores it, and returns a signed download
// token.
func (s *ReportService) ArchiveSheet(ctx context.Context, occurrenceID string, format ExportFormat) (*SheetLink, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet links are not configured")
	}
	payload, _, err := s.AttendanceSheet(ctx, occurrenceID, format)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("attendance-%s.%s", occurrenceID, format)
	if _, err := s.archive.Save(name, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "archive sheet")
	}
	token, expiresAt, err := s.signer.Sign(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign sheet link")
	}
	return &SheetLink{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveDownload validates a sheet token and opens the archived file.
func (s *ReportService) ResolveDownload(token string) (*os.File, string, error) {
	if s.archive == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "sheet links are not configured")
	}
	name, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.archive.Open(name)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "sheet no longer available")
	}
	contentType := "text/csv"
	if strings.HasSuffix(name, ".pdf") {
		contentType = "application/pdf"
	}
	return file, contentType, nil
}
