package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records       map[string]*models.AttendanceRecord
	byPair        map[string]*models.AttendanceRecord
	verdictErr    error
	appliedCount  int
	registerCount int
}

func pairKey(studentIndex, occurrenceID string) string {
	return studentIndex + "|" + occurrenceID
}

func (m *mockAttendanceRepo) RegisterScan(ctx context.Context, studentIndex, occurrenceID string, arrival time.Time) (*models.AttendanceRecord, error) {
	m.registerCount++
	if m.byPair == nil {
		m.byPair = make(map[string]*models.AttendanceRecord)
	}
	if m.records == nil {
		m.records = make(map[string]*models.AttendanceRecord)
	}
	key := pairKey(studentIndex, occurrenceID)
	if existing, ok := m.byPair[key]; ok {
		if existing.Status == models.AttendancePendingVerification {
			existing.ArrivalTime = arrival
		}
		copy := *existing
		return &copy, nil
	}
	record := &models.AttendanceRecord{
		ID:           "rec-" + studentIndex,
		StudentIndex: studentIndex,
		OccurrenceID: occurrenceID,
		ArrivalTime:  arrival,
		Status:       models.AttendancePendingVerification,
	}
	m.byPair[key] = record
	m.records[record.ID] = record
	copy := *record
	return &copy, nil
}

func (m *mockAttendanceRepo) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	if record, ok := m.records[id]; ok {
		copy := *record
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) ApplyVerdict(ctx context.Context, id string, status models.AttendanceStatus, note *string) (bool, error) {
	if m.verdictErr != nil {
		return false, m.verdictErr
	}
	record, ok := m.records[id]
	if !ok || record.Status != models.AttendancePendingVerification {
		return false, nil
	}
	record.Status = status
	record.ProximityNote = note
	m.appliedCount++
	return true, nil
}

func (m *mockAttendanceRepo) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) HistoryBetween(ctx context.Context, studentIndex string, from, to time.Time) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) SummaryForSemester(ctx context.Context, studentIndex, semester string) (*models.AttendanceAggregate, error) {
	return &models.AttendanceAggregate{TotalClasses: 10, AttendedClasses: 7}, nil
}

type mockStudents struct {
	enrolled map[string]bool
}

func (m *mockStudents) IsCurrentlyEnrolled(ctx context.Context, studentIndex string) (bool, error) {
	return m.enrolled[studentIndex], nil
}

type mockDevices struct {
	approved map[string]string
}

func (m *mockDevices) IsApproved(ctx context.Context, studentIndex, deviceID string) (bool, error) {
	return m.approved[studentIndex] == deviceID, nil
}

type mockTokens struct {
	occurrences map[string]*models.ClassOccurrence
	expired     map[string]bool
}

func (m *mockTokens) Validate(ctx context.Context, secret string) (*models.ClassOccurrence, error) {
	if m.expired[secret] {
		return nil, appErrors.ErrExpiredToken
	}
	if occ, ok := m.occurrences[secret]; ok {
		return occ, nil
	}
	return nil, appErrors.ErrInvalidToken
}

type mockAuditor struct {
	entries []models.ProximityVerificationLog
	err     error
}

func (m *mockAuditor) Append(ctx context.Context, entry *models.ProximityVerificationLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func newTestAttendanceService(records *mockAttendanceRepo, auditor *mockAuditor) *AttendanceService {
	students := &mockStudents{enrolled: map[string]bool{"221045": true}}
	devices := &mockDevices{approved: map[string]string{"221045": "device-a"}}
	tokens := &mockTokens{occurrences: map[string]*models.ClassOccurrence{
		"valid-token": {ID: "occ-1", RoomID: "room-1"},
	}}
	return NewAttendanceService(records, students, devices, tokens, nil, auditor, nil, nil, nil)
}

func validRequest(levels ...models.ProximityLevel) RegisterAttendanceRequest {
	start := time.Now().Add(-30 * time.Second)
	return RegisterAttendanceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-a",
		SessionToken: "valid-token",
		Detections:   detections("room-1", levels...),
		StartedAt:    start,
		EndedAt:      start.Add(30 * time.Second),
	}
}

func TestRegisterAttendanceSuccessMarksPresent(t *testing.T) {
	records := &mockAttendanceRepo{}
	auditor := &mockAuditor{}
	svc := newTestAttendanceService(records, auditor)

	result, err := svc.RegisterAttendance(context.Background(), validRequest(
		models.ProximityNear, models.ProximityNear, models.ProximityMedium,
		models.ProximityNear, models.ProximityFar))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationSuccess, result.Outcome.Status)
	assert.Equal(t, models.AttendancePresent, result.Record.Status)
	require.NotNil(t, result.Record.ProximityNote)
	// 5 detection rows plus the summary row.
	assert.Len(t, auditor.entries, 6)
}

func TestRegisterAttendanceFailedVerdictMarksAbsent(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := newTestAttendanceService(records, &mockAuditor{})

	result, err := svc.RegisterAttendance(context.Background(), validRequest(
		models.ProximityOutOfRange, models.ProximityOutOfRange,
		models.ProximityOutOfRange, models.ProximityOutOfRange,
		models.ProximityNear))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationFailed, result.Outcome.Status)
	assert.Equal(t, "too many out-of-range detections", result.Outcome.FailureReason)
	assert.Equal(t, models.AttendanceAbsent, result.Record.Status)
	require.NotNil(t, result.Record.ProximityNote)
	assert.Equal(t, "too many out-of-range detections", *result.Record.ProximityNote)
}

func TestRegisterAttendanceWrongRoomMarksAbsent(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := newTestAttendanceService(records, &mockAuditor{})

	req := validRequest()
	req.Detections = detections("room-9",
		models.ProximityNear, models.ProximityNear, models.ProximityNear)

	result, err := svc.RegisterAttendance(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationWrongRoom, result.Outcome.Status)
	assert.Equal(t, models.AttendanceAbsent, result.Record.Status)
}

func TestRegisterAttendanceTerminalRecordUntouched(t *testing.T) {
	records := &mockAttendanceRepo{
		records: map[string]*models.AttendanceRecord{},
		byPair:  map[string]*models.AttendanceRecord{},
	}
	decided := &models.AttendanceRecord{
		ID:           "rec-221045",
		StudentIndex: "221045",
		OccurrenceID: "occ-1",
		Status:       models.AttendancePresent,
	}
	records.records[decided.ID] = decided
	records.byPair[pairKey("221045", "occ-1")] = decided
	svc := newTestAttendanceService(records, &mockAuditor{})

	result, err := svc.RegisterAttendance(context.Background(), validRequest(
		models.ProximityOutOfRange, models.ProximityOutOfRange, models.ProximityOutOfRange))
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, result.Record.Status)
	assert.Zero(t, records.appliedCount)
}

func TestRegisterAttendanceWithoutDetectionsStaysPending(t *testing.T) {
	records := &mockAttendanceRepo{}
	auditor := &mockAuditor{}
	svc := newTestAttendanceService(records, auditor)

	req := validRequest()
	req.Detections = nil

	result, err := svc.RegisterAttendance(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.Outcome)
	assert.Equal(t, models.AttendancePendingVerification, result.Record.Status)
	assert.Empty(t, auditor.entries)
}

func TestLogDetectionAppendsAuditEntry(t *testing.T) {
	auditor := &mockAuditor{}
	svc := newTestAttendanceService(&mockAttendanceRepo{}, auditor)

	err := svc.LogDetection(context.Background(), models.ProximityDetection{
		StudentIndex:      "221045",
		DetectedRoomID:    "room-1",
		RSSI:              -52,
		ProximityLevel:    models.ProximityMedium,
		EstimatedDistance: 7.5,
	})
	require.NoError(t, err)
	require.Len(t, auditor.entries, 1)
	entry := auditor.entries[0]
	assert.Equal(t, models.VerificationOngoing, entry.VerificationStatus)
	assert.Equal(t, "221045", entry.StudentIndex)
	require.NotNil(t, entry.ProximityLevel)
	assert.Equal(t, models.ProximityMedium, *entry.ProximityLevel)
	assert.False(t, entry.VerificationTime.IsZero())
}

func TestLogDetectionRejectsUnknownLevel(t *testing.T) {
	svc := newTestAttendanceService(&mockAttendanceRepo{}, &mockAuditor{})

	err := svc.LogDetection(context.Background(), models.ProximityDetection{
		StudentIndex:   "221045",
		ProximityLevel: "SOMEWHERE",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterAttendanceRejectsBadWindow(t *testing.T) {
	svc := newTestAttendanceService(&mockAttendanceRepo{}, &mockAuditor{})

	req := validRequest(models.ProximityNear)
	req.EndedAt = req.StartedAt.Add(5 * time.Second)
	_, err := svc.RegisterAttendance(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationWindow)

	req = validRequest(models.ProximityNear)
	req.EndedAt = req.StartedAt.Add(90 * time.Second)
	_, err = svc.RegisterAttendance(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationWindow)
}

func TestRegisterAttendanceGateChecks(t *testing.T) {
	svc := newTestAttendanceService(&mockAttendanceRepo{}, &mockAuditor{})

	req := validRequest(models.ProximityNear)
	req.StudentIndex = "999999"
	_, err := svc.RegisterAttendance(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrStudentInvalid)

	req = validRequest(models.ProximityNear)
	req.DeviceID = "device-b"
	_, err = svc.RegisterAttendance(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrDeviceNotRegistered)

	req = validRequest(models.ProximityNear)
	req.SessionToken = "bogus"
	_, err = svc.RegisterAttendance(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestRegisterAttendanceSwallowsVerdictPersistFailure(t *testing.T) {
	records := &mockAttendanceRepo{verdictErr: errors.New("connection reset")}
	svc := newTestAttendanceService(records, &mockAuditor{})

	result, err := svc.RegisterAttendance(context.Background(), validRequest(
		models.ProximityNear, models.ProximityNear, models.ProximityNear))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationSuccess, result.Outcome.Status)
	// The scan stands even though the verdict write failed.
	assert.Equal(t, models.AttendancePendingVerification, result.Record.Status)
}

func TestConfirmAttendance(t *testing.T) {
	records := &mockAttendanceRepo{
		records: map[string]*models.AttendanceRecord{
			"rec-1": {ID: "rec-1", Status: models.AttendancePendingVerification},
			"rec-2": {ID: "rec-2", Status: models.AttendancePendingVerification},
			"rec-3": {ID: "rec-3", Status: models.AttendanceAbsent},
		},
	}
	svc := newTestAttendanceService(records, &mockAuditor{})

	record, err := svc.ConfirmAttendance(context.Background(), "rec-1", models.ProximityMedium)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, record.Status)

	record, err = svc.ConfirmAttendance(context.Background(), "rec-2", models.ProximityOutOfRange)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAbsent, record.Status)

	_, err = svc.ConfirmAttendance(context.Background(), "rec-3", models.ProximityNear)
	assert.ErrorIs(t, err, appErrors.ErrNotPendingVerification)

	_, err = svc.ConfirmAttendance(context.Background(), "missing", models.ProximityNear)
	assert.ErrorIs(t, err, appErrors.ErrRecordNotFound)
}

func TestSummaryPercentage(t *testing.T) {
	svc := newTestAttendanceService(&mockAttendanceRepo{}, &mockAuditor{})

	summary, err := svc.Summary(context.Background(), "221045", "2025-W")
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalClasses)
	assert.Equal(t, 7, summary.AttendedClasses)
	assert.Equal(t, 3, summary.Absences)
	assert.InDelta(t, 70.0, summary.Percentage, 0.001)
}
