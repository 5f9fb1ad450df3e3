package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type attendanceRepository interface {
	RegisterScan(ctx context.Context, studentIndex, occurrenceID string, arrival time.Time) (*models.AttendanceRecord, error)
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	ApplyVerdict(ctx context.Context, id string, status models.AttendanceStatus, note *string) (bool, error)
	ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error)
	HistoryBetween(ctx context.Context, studentIndex string, from, to time.Time) ([]models.AttendanceRecord, error)
	SummaryForSemester(ctx context.Context, studentIndex, semester string) (*models.AttendanceAggregate, error)
}

type studentDirectory interface {
	IsCurrentlyEnrolled(ctx context.Context, studentIndex string) (bool, error)
}

type deviceGuard interface {
	IsApproved(ctx context.Context, studentIndex, deviceID string) (bool, error)
}

type tokenValidator interface {
	Validate(ctx context.Context, secret string) (*models.ClassOccurrence, error)
}

type proximityAuditor interface {
	Append(ctx context.Context, entry *models.ProximityVerificationLog) error
}

// AttendanceService runs the scan-and-verify pipeline and serves attendance
// reads.
type AttendanceService struct {
	records   attendanceRepository
	students  studentDirectory
	devices   deviceGuard
	tokens    tokenValidator
	analyzer  *ProximityAnalyzer
	audit     proximityAuditor
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records attendanceRepository, students studentDirectory, devices deviceGuard, tokens tokenValidator, analyzer *ProximityAnalyzer, audit proximityAuditor, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if analyzer == nil {
		analyzer = NewProximityAnalyzer()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		records:   records,
		students:  students,
		devices:   devices,
		tokens:    tokens,
		analyzer:  analyzer,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// RegisterAttendanceRequest is the scan payload sent by the mobile client.
type RegisterAttendanceRequest struct {
	StudentIndex string                      `json:"student_index" validate:"required"`
	DeviceID     string                      `json:"device_id" validate:"required"`
	SessionToken string                      `json:"session_token" validate:"required"`
	Detections   []models.ProximityDetection `json:"proximity_detections"`
	StartedAt    time.Time                   `json:"verification_start_time"`
	EndedAt      time.Time                   `json:"verification_end_time"`
}

// RegisterAttendanceResult pairs the stored record with the analyzer verdict.
type RegisterAttendanceResult struct {
	Record  *models.AttendanceRecord    `json:"attendance_record"`
	Outcome *models.VerificationOutcome `json:"verification"`
}

// RegisterAttendance validates the student, device and token, upserts the
// attendance row, then runs proximity analysis when the client supplied
// detections. A passing verdict promotes the row to PRESENT; a failing
// verdict is a normal analysis result and marks the row ABSENT with the
// failure reason. A scan without detections stays PENDING_VERIFICATION for
// the manual confirm path. Verdict and audit writes that fail after the scan
// was accepted are logged and counted but never surfaced: the student keeps
// their registration.
func (s *AttendanceService) RegisterAttendance(ctx context.Context, req RegisterAttendanceRequest) (*RegisterAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if len(req.Detections) > 0 {
		window := req.EndedAt.Sub(req.StartedAt)
		if window < MinVerificationSeconds*time.Second || window > MaxVerificationSeconds*time.Second {
			return nil, appErrors.ErrInvalidVerificationWindow
		}
		for _, d := range req.Detections {
			if !d.ProximityLevel.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown proximity level %q", d.ProximityLevel))
			}
		}
	}

	enrolled, err := s.students.IsCurrentlyEnrolled(ctx, req.StudentIndex)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check enrolment")
	}
	if !enrolled {
		return nil, appErrors.ErrStudentInvalid
	}

	approved, err := s.devices.IsApproved(ctx, req.StudentIndex, req.DeviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check device binding")
	}
	if !approved {
		return nil, appErrors.ErrDeviceNotRegistered
	}

	occ, err := s.tokens.Validate(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	record, err := s.records.RegisterScan(ctx, req.StudentIndex, occ.ID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "register scan")
	}

	if len(req.Detections) == 0 {
		return &RegisterAttendanceResult{Record: record}, nil
	}

	outcome := s.analyzer.Analyze(occ.RoomID, req.Detections)
	s.metrics.RecordVerification(outcome.Status)

	if record.Status.Terminal() {
		// Re-scan after a decided record: keep the verdict for the audit
		// trail but never rewrite the record.
		s.writeAuditTrail(ctx, record, occ, req, outcome)
		return &RegisterAttendanceResult{Record: record, Outcome: &outcome}, nil
	}

	status := models.AttendanceAbsent
	note := outcome.FailureReason
	if outcome.Status.Success() {
		status = models.AttendancePresent
		note = verdictNote(outcome)
	} else {
		s.logger.Info("proximity verification failed",
			zap.String("attendance_record_id", record.ID),
			zap.String("status", string(outcome.Status)),
			zap.String("reason", outcome.FailureReason))
	}

	applied, err := s.records.ApplyVerdict(ctx, record.ID, status, &note)
	if err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Warn("verdict persist failed after accepted scan",
			zap.String("attendance_record_id", record.ID),
			zap.Error(err))
	} else if applied {
		record.Status = status
		record.ProximityNote = &note
	}

	s.writeAuditTrail(ctx, record, occ, req, outcome)
	return &RegisterAttendanceResult{Record: record, Outcome: &outcome}, nil
}

func verdictNote(outcome models.VerificationOutcome) string {
	return fmt.Sprintf("%s: %d/%d valid detections, avg %.1fm",
		outcome.Status, outcome.ValidDetections, outcome.TotalDetections, outcome.AverageDistance)
}

// writeAuditTrail appends one row per detection plus a summary row. Audit
// failures are swallowed: the attendance decision has already been made.
func (s *AttendanceService) writeAuditTrail(ctx context.Context, record *models.AttendanceRecord, occ *models.ClassOccurrence, req RegisterAttendanceRequest, outcome models.VerificationOutcome) {
	duration := int(req.EndedAt.Sub(req.StartedAt).Seconds())
	for i := range req.Detections {
		d := req.Detections[i]
		entry := &models.ProximityVerificationLog{
			AttendanceRecordID: &record.ID,
			StudentIndex:       record.StudentIndex,
			BeaconDeviceID:     &d.BeaconDeviceID,
			DetectedRoomID:     &d.DetectedRoomID,
			ExpectedRoomID:     &occ.RoomID,
			RSSI:               &d.RSSI,
			ProximityLevel:     &d.ProximityLevel,
			EstimatedDistance:  &d.EstimatedDistance,
			VerificationStatus: models.VerificationOngoing,
			BeaconType:         &d.BeaconType,
			SessionToken:       &req.SessionToken,
			VerificationTime:   d.DetectedAt,
		}
		if err := s.audit.Append(ctx, entry); err != nil {
			s.metrics.RecordPersistFailure()
			s.logger.Warn("proximity audit write failed",
				zap.String("attendance_record_id", record.ID),
				zap.Error(err))
			return
		}
	}

	summary := &models.ProximityVerificationLog{
		AttendanceRecordID: &record.ID,
		StudentIndex:       record.StudentIndex,
		DetectedRoomID:     nilIfEmpty(outcome.DetectedRoomID),
		ExpectedRoomID:     &occ.RoomID,
		EstimatedDistance:  &outcome.AverageDistance,
		VerificationStatus: outcome.Status,
		DurationSeconds:    &duration,
		SessionToken:       &req.SessionToken,
		VerificationTime:   req.EndedAt,
	}
	if err := s.audit.Append(ctx, summary); err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Warn("proximity summary write failed",
			zap.String("attendance_record_id", record.ID),
			zap.Error(err))
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// LogDetection records a single beacon reading outside a registration, used
// by the mobile client to report readings taken while a verification is
// still in progress.
func (s *AttendanceService) LogDetection(ctx context.Context, d models.ProximityDetection) error {
	if d.StudentIndex == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student index required")
	}
	if !d.ProximityLevel.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown proximity level %q", d.ProximityLevel))
	}
	detectedAt := d.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}
	entry := &models.ProximityVerificationLog{
		StudentIndex:       d.StudentIndex,
		BeaconDeviceID:     nilIfEmpty(d.BeaconDeviceID),
		DetectedRoomID:     nilIfEmpty(d.DetectedRoomID),
		RSSI:               &d.RSSI,
		ProximityLevel:     &d.ProximityLevel,
		EstimatedDistance:  &d.EstimatedDistance,
		VerificationStatus: models.VerificationOngoing,
		BeaconType:         nilIfEmpty(d.BeaconType),
		SessionToken:       nilIfEmpty(d.SessionToken),
		VerificationTime:   detectedAt,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store proximity detection")
	}
	return nil
}

// ConfirmAttendance applies a manual verdict to a pending record. NEAR and
// MEDIUM confirm presence; FAR and OUT_OF_RANGE mark the student absent.
// Terminal records are never rewritten.
func (s *AttendanceService) ConfirmAttendance(ctx context.Context, recordID string, level models.ProximityLevel) (*models.AttendanceRecord, error) {
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown proximity level %q", level))
	}

	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance record")
	}
	if record.Status.Terminal() {
		return nil, appErrors.ErrNotPendingVerification
	}

	status := models.AttendanceAbsent
	if level == models.ProximityNear || level == models.ProximityMedium {
		status = models.AttendancePresent
	}
	note := fmt.Sprintf("manually confirmed at level %s", level)

	applied, err := s.records.ApplyVerdict(ctx, recordID, status, &note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "confirm attendance")
	}
	if !applied {
		// Another writer decided the record between the read and the update.
		return nil, appErrors.ErrNotPendingVerification
	}

	record.Status = status
	record.ProximityNote = &note
	return record, nil
}

// GetRecord loads one attendance record.
func (s *AttendanceService) GetRecord(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance record")
	}
	return record, nil
}

// ListByOccurrence returns the attendance sheet for one occurrence.
func (s *AttendanceService) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error) {
	rows, err := s.records.ListByOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list attendance")
	}
	return rows, nil
}

// History returns a student's attendance records inside a date range.
func (s *AttendanceService) History(ctx context.Context, studentIndex string, from, to time.Time) ([]models.AttendanceRecord, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end precedes start")
	}
	rows, err := s.records.HistoryBetween(ctx, studentIndex, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance history")
	}
	return rows, nil
}

// Summary aggregates a student's attendance for one semester.
func (s *AttendanceService) Summary(ctx context.Context, studentIndex, semester string) (*models.AttendanceSummary, error) {
	agg, err := s.records.SummaryForSemester(ctx, studentIndex, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance summary")
	}
	summary := &models.AttendanceSummary{}
	if agg == nil || agg.TotalClasses == 0 {
		return summary, nil
	}
	summary.TotalClasses = agg.TotalClasses
	summary.AttendedClasses = agg.AttendedClasses
	summary.Absences = agg.TotalClasses - agg.AttendedClasses
	summary.Percentage = float64(agg.AttendedClasses) / float64(agg.TotalClasses) * 100
	return summary, nil
}
