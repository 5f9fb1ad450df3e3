package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/presence-api/internal/models"
	"github.com/edupulse/presence-api/internal/service"
)

type attendanceRepoStub struct {
	record *models.AttendanceRecord
}

func (s *attendanceRepoStub) RegisterScan(ctx context.Context, studentIndex, occurrenceID string, arrival time.Time) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{
		ID:           "rec-1",
		StudentIndex: studentIndex,
		OccurrenceID: occurrenceID,
		ArrivalTime:  arrival,
		Status:       models.AttendancePendingVerification,
	}
	s.record = record
	return record, nil
}

func (s *attendanceRepoStub) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	return s.record, nil
}

func (s *attendanceRepoStub) ApplyVerdict(ctx context.Context, id string, status models.AttendanceStatus, note *string) (bool, error) {
	s.record.Status = status
	s.record.ProximityNote = note
	return true, nil
}

func (s *attendanceRepoStub) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error) {
	return nil, nil
}

func (s *attendanceRepoStub) HistoryBetween(ctx context.Context, studentIndex string, from, to time.Time) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (s *attendanceRepoStub) SummaryForSemester(ctx context.Context, studentIndex, semester string) (*models.AttendanceAggregate, error) {
	return nil, nil
}

type studentsStub struct{}

func (studentsStub) IsCurrentlyEnrolled(ctx context.Context, studentIndex string) (bool, error) {
	return true, nil
}

type devicesStub struct{}

func (devicesStub) IsApproved(ctx context.Context, studentIndex, deviceID string) (bool, error) {
	return true, nil
}

type tokensStub struct{}

func (tokensStub) Validate(ctx context.Context, secret string) (*models.ClassOccurrence, error) {
	return &models.ClassOccurrence{ID: "occ-1", RoomID: "room-1"}, nil
}

type auditorStub struct{}

func (auditorStub) Append(ctx context.Context, entry *models.ProximityVerificationLog) error {
	return nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newTestAttendanceHandler() (*AttendanceHandler, *attendanceRepoStub) {
	repo := &attendanceRepoStub{}
	svc := service.NewAttendanceService(repo, studentsStub{}, devicesStub{}, tokensStub{}, nil, auditorStub{}, nil, nil, nil)
	return NewAttendanceHandler(svc), repo
}

func TestAttendanceHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTestAttendanceHandler()

	start := time.Now().Add(-30 * time.Second)
	payload, _ := json.Marshal(service.RegisterAttendanceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-a",
		SessionToken: "token-1",
		Detections: []models.ProximityDetection{
			{DetectedRoomID: "room-1", ProximityLevel: models.ProximityNear, EstimatedDistance: 2},
			{DetectedRoomID: "room-1", ProximityLevel: models.ProximityNear, EstimatedDistance: 3},
			{DetectedRoomID: "room-1", ProximityLevel: models.ProximityMedium, EstimatedDistance: 7},
		},
		StartedAt: start,
		EndedAt:   start.Add(30 * time.Second),
	})
	c, w := newGinContext(http.MethodPost, "/attendance", payload)

	handler.Register(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.AttendancePresent, repo.record.Status)
}

func TestAttendanceHandlerRegisterRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAttendanceHandler()

	c, w := newGinContext(http.MethodPost, "/attendance", []byte("{not json"))
	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerConfirm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTestAttendanceHandler()
	repo.record = &models.AttendanceRecord{ID: "rec-1", Status: models.AttendancePendingVerification}

	payload, _ := json.Marshal(map[string]string{"proximity_level": "MEDIUM"})
	c, w := newGinContext(http.MethodPost, "/attendance/rec-1/confirm", payload)
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}

	handler.Confirm(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.AttendancePresent, repo.record.Status)
}
