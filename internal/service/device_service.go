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
	"github.com/edupulse/presence-api/internal/notification"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type deviceRepository interface {
	GetDevice(ctx context.Context, studentIndex string) (*models.StudentDevice, error)
	UpsertDevice(ctx context.Context, device *models.StudentDevice) error
	UpsertPendingRequest(ctx context.Context, req *models.DeviceLinkRequest) (*models.DeviceLinkRequest, error)
	InsertResolvedRequest(ctx context.Context, req *models.DeviceLinkRequest) error
	ListPending(ctx context.Context) ([]models.DeviceLinkRequest, error)
	CountForStudentSince(ctx context.Context, studentIndex string, since time.Time) (int, error)
	UpdateStatus(ctx context.Context, id string, status models.DeviceLinkStatus, notes *string) error
}

// DeviceService enforces the one-device-per-student rule. The first device a
// student registers is trusted immediately; every later change goes through a
// pending request that the reconciliation sweep resolves.
type DeviceService struct {
	devices      deviceRepository
	notifier     notification.Notifier
	metrics      *MetricsService
	windowMonths int
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDeviceService constructs the device service.
func NewDeviceService(devices deviceRepository, notifier notification.Notifier, metrics *MetricsService, windowMonths int, validate *validator.Validate, logger *zap.Logger) *DeviceService {
	if windowMonths <= 0 {
		windowMonths = 6
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{
		devices:      devices,
		notifier:     notifier,
		metrics:      metrics,
		windowMonths: windowMonths,
		validator:    validate,
		logger:       logger,
	}
}

// IsApproved reports whether the given device is the student's trusted one.
// A student with no binding at all is not approved; they must register first.
func (s *DeviceService) IsApproved(ctx context.Context, studentIndex, deviceID string) (bool, error) {
	device, err := s.devices.GetDevice(ctx, studentIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load device binding: %w", err)
	}
	return device.DeviceID == deviceID, nil
}

// BoundDevice returns the student's trusted device.
func (s *DeviceService) BoundDevice(ctx context.Context, studentIndex string) (*models.StudentDevice, error) {
	device, err := s.devices.GetDevice(ctx, studentIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrDeviceNotRegistered
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load device binding")
	}
	return device, nil
}

// LinkDeviceRequest is the payload for binding or rebinding a device.
type LinkDeviceRequest struct {
	StudentIndex string `json:"student_index" validate:"required"`
	DeviceID     string `json:"device_id" validate:"required"`
	DeviceName   string `json:"device_name" validate:"required"`
	DeviceOS     string `json:"device_os" validate:"required"`
}

// RequestLink handles a device bind request. First device: approved on the
// spot with an audit row. Same device again: conflict. New device while one
// is bound: a pending request replaces any earlier pending one, and the
// sweep decides it later.
func (s *DeviceService) RequestLink(ctx context.Context, req LinkDeviceRequest) (*models.DeviceLinkRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid device link payload")
	}

	current, err := s.devices.GetDevice(ctx, req.StudentIndex)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load device binding")
	}

	if current == nil {
		return s.registerFirstDevice(ctx, req)
	}
	if current.DeviceID == req.DeviceID {
		return nil, appErrors.ErrDeviceAlreadyRegistered
	}

	pending, err := s.devices.UpsertPendingRequest(ctx, &models.DeviceLinkRequest{
		StudentIndex: req.StudentIndex,
		DeviceID:     req.DeviceID,
		DeviceName:   req.DeviceName,
		DeviceOS:     req.DeviceOS,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store link request")
	}
	s.logger.Info("device link request queued",
		zap.String("student_index", req.StudentIndex),
		zap.String("device_id", req.DeviceID))
	return pending, nil
}

func (s *DeviceService) registerFirstDevice(ctx context.Context, req LinkDeviceRequest) (*models.DeviceLinkRequest, error) {
	device := &models.StudentDevice{
		StudentIndex: req.StudentIndex,
		DeviceID:     req.DeviceID,
		DeviceName:   req.DeviceName,
		DeviceOS:     req.DeviceOS,
	}
	if err := s.devices.UpsertDevice(ctx, device); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bind first device")
	}

	notes := "first device, auto-approved"
	resolved := &models.DeviceLinkRequest{
		StudentIndex: req.StudentIndex,
		DeviceID:     req.DeviceID,
		DeviceName:   req.DeviceName,
		DeviceOS:     req.DeviceOS,
		Status:       models.DeviceLinkAutoApproved,
		Notes:        &notes,
	}
	if err := s.devices.InsertResolvedRequest(ctx, resolved); err != nil {
		// The binding already took effect; the audit row is best effort.
		s.logger.Warn("first-device audit row failed",
			zap.String("student_index", req.StudentIndex),
			zap.Error(err))
	}
	s.metrics.RecordLinkResolution(models.DeviceLinkAutoApproved)
	s.logger.Info("first device auto-approved",
		zap.String("student_index", req.StudentIndex),
		zap.String("device_id", req.DeviceID))
	return resolved, nil
}

// ListPending returns open link requests for review tooling.
func (s *DeviceService) ListPending(ctx context.Context) ([]models.DeviceLinkRequest, error) {
	rows, err := s.devices.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list pending link requests")
	}
	return rows, nil
}

// ResolvePending sweeps all open link requests. A student with at most one
// request inside the approval window gets the new device bound; repeat
// requesters are flagged and support is notified. One broken request never
// stops the sweep.
func (s *DeviceService) ResolvePending(ctx context.Context) error {
	pending, err := s.devices.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending link requests: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	windowStart := time.Now().UTC().AddDate(0, -s.windowMonths, 0)
	for i := range pending {
		req := pending[i]
		if err := s.resolveOne(ctx, req, windowStart); err != nil {
			s.logger.Error("device link resolution failed",
				zap.String("request_id", req.ID),
				zap.String("student_index", req.StudentIndex),
				zap.Error(err))
		}
	}
	return nil
}

func (s *DeviceService) resolveOne(ctx context.Context, req models.DeviceLinkRequest, windowStart time.Time) error {
	count, err := s.devices.CountForStudentSince(ctx, req.StudentIndex, windowStart)
	if err != nil {
		return err
	}

	if count > 1 {
		notes := fmt.Sprintf("%d link requests inside the approval window", count)
		if err := s.devices.UpdateStatus(ctx, req.ID, models.DeviceLinkFlaggedForReview, &notes); err != nil {
			return err
		}
		s.metrics.RecordLinkResolution(models.DeviceLinkFlaggedForReview)
		subject := fmt.Sprintf("Device link flagged for student %s", req.StudentIndex)
		body := fmt.Sprintf("Student %s requested device %q (%s, %s) but has %d link requests in the last %d months. Manual review required.",
			req.StudentIndex, req.DeviceName, req.DeviceOS, req.DeviceID, count, s.windowMonths)
		if err := s.notifier.Send(ctx, subject, body); err != nil {
			s.logger.Warn("flag notification failed",
				zap.String("request_id", req.ID),
				zap.Error(err))
		}
		return nil
	}

	device := &models.StudentDevice{
		StudentIndex: req.StudentIndex,
		DeviceID:     req.DeviceID,
		DeviceName:   req.DeviceName,
		DeviceOS:     req.DeviceOS,
	}
	if err := s.devices.UpsertDevice(ctx, device); err != nil {
		return err
	}
	notes := "auto-approved by reconciliation sweep"
	if err := s.devices.UpdateStatus(ctx, req.ID, models.DeviceLinkAutoApproved, &notes); err != nil {
		return err
	}
	s.metrics.RecordLinkResolution(models.DeviceLinkAutoApproved)
	s.logger.Info("device link auto-approved",
		zap.String("request_id", req.ID),
		zap.String("student_index", req.StudentIndex))
	return nil
}
