package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type referenceRepository interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListSubjects(ctx context.Context, semester string) ([]models.Subject, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
}

type roomAnalyticsReader interface {
	RoomAnalytics(ctx context.Context, roomID string, from time.Time) (*models.RoomProximityAnalytics, error)
}

// ReferenceService serves scheduling reference reads and room-level
// verification analytics.
type ReferenceService struct {
	reference referenceRepository
	analytics roomAnalyticsReader
	logger    *zap.Logger
}

// NewReferenceService constructs the reference service.
func NewReferenceService(reference referenceRepository, analytics roomAnalyticsReader, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{reference: reference, analytics: analytics, logger: logger}
}

// Rooms lists all rooms.
func (s *ReferenceService) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.reference.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list rooms")
	}
	return rooms, nil
}

// Room fetches one room by id.
func (s *ReferenceService) Room(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.reference.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load room")
	}
	return room, nil
}

// Subjects lists subjects, optionally scoped to one semester.
func (s *ReferenceService) Subjects(ctx context.Context, semester string) ([]models.Subject, error) {
	subjects, err := s.reference.ListSubjects(ctx, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list subjects")
	}
	return subjects, nil
}

// Semesters lists all semesters.
func (s *ReferenceService) Semesters(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.reference.ListSemesters(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list semesters")
	}
	return semesters, nil
}

// RoomAnalytics aggregates verification quality for one room since a point in
// time.
func (s *ReferenceService) RoomAnalytics(ctx context.Context, roomID string, from time.Time) (*models.RoomProximityAnalytics, error) {
	if _, err := s.reference.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load room")
	}
	stats, err := s.analytics.RoomAnalytics(ctx, roomID, from)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load room analytics")
	}
	return stats, nil
}
