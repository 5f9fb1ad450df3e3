package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type studentRepository interface {
	IsCurrentlyEnrolled(ctx context.Context, studentIndex string) (bool, error)
	GetByIndex(ctx context.Context, studentIndex string) (*models.Student, error)
	List(ctx context.Context, page, pageSize int) ([]models.Student, int, error)
	ByProfessor(ctx context.Context, professorID string) ([]models.Student, error)
}

// StudentService serves directory reads and the enrolment check.
type StudentService struct {
	students studentRepository
	logger   *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, logger: logger}
}

// Get loads one student.
func (s *StudentService) Get(ctx context.Context, studentIndex string) (*models.Student, error) {
	student, err := s.students.GetByIndex(ctx, studentIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load student")
	}
	return student, nil
}

// Validate reports whether the student is validly enrolled right now.
func (s *StudentService) Validate(ctx context.Context, studentIndex string) (bool, error) {
	enrolled, err := s.students.IsCurrentlyEnrolled(ctx, studentIndex)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check enrolment")
	}
	return enrolled, nil
}

// List returns a page of the directory.
func (s *StudentService) List(ctx context.Context, page, pageSize int) ([]models.Student, int, error) {
	students, total, err := s.students.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list students")
	}
	return students, total, nil
}

// ByProfessor lists the students across a professor's subjects.
func (s *StudentService) ByProfessor(ctx context.Context, professorID string) ([]models.Student, error) {
	students, err := s.students.ByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list professor students")
	}
	return students, nil
}
