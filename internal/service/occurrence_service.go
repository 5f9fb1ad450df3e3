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

type occurrenceReader interface {
	GetByID(ctx context.Context, id string) (*models.ClassOccurrence, error)
	ByProfessorBetween(ctx context.Context, professorID string, from, to time.Time) ([]models.OccurrenceOverview, error)
	ActiveForStudentAt(ctx context.Context, studentIndex string, at time.Time) ([]models.OccurrenceOverview, error)
}

// OccurrenceService serves schedule views over class occurrences.
type OccurrenceService struct {
	occurrences occurrenceReader
	logger      *zap.Logger
}

// NewOccurrenceService constructs the occurrence service.
func NewOccurrenceService(occurrences occurrenceReader, logger *zap.Logger) *OccurrenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceService{occurrences: occurrences, logger: logger}
}

// Get loads one occurrence.
func (s *OccurrenceService) Get(ctx context.Context, id string) (*models.ClassOccurrence, error) {
	occ, err := s.occurrences.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load occurrence")
	}
	return occ, nil
}

// ForProfessorOnDate lists a professor's occurrences on one day.
func (s *OccurrenceService) ForProfessorOnDate(ctx context.Context, professorID string, date time.Time) ([]models.OccurrenceOverview, error) {
	day := date.Truncate(24 * time.Hour)
	return s.forProfessor(ctx, professorID, day, day)
}

// ForProfessorWeek lists a professor's occurrences for the week containing
// the date, Monday through Sunday.
func (s *OccurrenceService) ForProfessorWeek(ctx context.Context, professorID string, date time.Time) ([]models.OccurrenceOverview, error) {
	day := date.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return s.forProfessor(ctx, professorID, monday, monday.AddDate(0, 0, 6))
}

// ForProfessorMonth lists a professor's occurrences for the calendar month
// containing the date.
func (s *OccurrenceService) ForProfessorMonth(ctx context.Context, professorID string, date time.Time) ([]models.OccurrenceOverview, error) {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	last := first.AddDate(0, 1, -1)
	return s.forProfessor(ctx, professorID, first, last)
}

func (s *OccurrenceService) forProfessor(ctx context.Context, professorID string, from, to time.Time) ([]models.OccurrenceOverview, error) {
	rows, err := s.occurrences.ByProfessorBetween(ctx, professorID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load professor schedule")
	}
	return rows, nil
}

// ActiveForStudent lists occurrences a student could attend right now.
func (s *OccurrenceService) ActiveForStudent(ctx context.Context, studentIndex string, at time.Time) ([]models.OccurrenceOverview, error) {
	rows, err := s.occurrences.ActiveForStudentAt(ctx, studentIndex, at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load active occurrences")
	}
	return rows, nil
}
