package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type tokenOccurrenceRepository interface {
	GetByID(ctx context.Context, id string) (*models.ClassOccurrence, error)
	FindByToken(ctx context.Context, secret string) (*models.ClassOccurrence, error)
	SetToken(ctx context.Context, occurrenceID, secret string, expiresAt time.Time) error
}

type tokenAttendanceRepository interface {
	ResetPendingForOccurrence(ctx context.Context, occurrenceID string) error
}

// TokenService issues and validates per-occurrence attendance tokens. One
// token is active per occurrence at a time; issuing again replaces the old
// secret and resets any pending attendance rows so students scan fresh.
type TokenService struct {
	occurrences tokenOccurrenceRepository
	attendance  tokenAttendanceRepository
	ttl         time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewTokenService constructs the token service.
func NewTokenService(occurrences tokenOccurrenceRepository, attendance tokenAttendanceRepository, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *TokenService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{occurrences: occurrences, attendance: attendance, ttl: ttl, metrics: metrics, logger: logger}
}

// Issue mints a fresh token for the occurrence. Pending attendance rows from
// a previous token are reset first; terminal rows are left untouched.
func (s *TokenService) Issue(ctx context.Context, occurrenceID string) (*models.SessionToken, error) {
	occ, err := s.occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load occurrence")
	}

	if err := s.attendance.ResetPendingForOccurrence(ctx, occ.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reset pending attendance")
	}

	now := time.Now().UTC()
	token := &models.SessionToken{
		OccurrenceID: occ.ID,
		Secret:       uuid.NewString(),
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.occurrences.SetToken(ctx, occ.ID, token.Secret, token.ExpiresAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store attendance token")
	}

	s.metrics.RecordTokenIssued()
	s.logger.Info("attendance token issued",
		zap.String("occurrence_id", occ.ID),
		zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

// Validate resolves a scanned token secret to its occurrence. An unknown
// secret and an expired one fail with distinct errors so clients can prompt
// the student to re-scan.
func (s *TokenService) Validate(ctx context.Context, secret string) (*models.ClassOccurrence, error) {
	if secret == "" {
		return nil, appErrors.ErrInvalidToken
	}
	occ, err := s.occurrences.FindByToken(ctx, secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve attendance token")
	}
	if occ.TokenExpires == nil || time.Now().After(*occ.TokenExpires) {
		return nil, appErrors.ErrExpiredToken
	}
	return occ, nil
}
