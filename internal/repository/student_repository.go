package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// StudentRepository reads the student directory. Enrolment data is owned by
// the registrar system; this service only checks validity.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `student_index, first_name, last_name, email, study_track`

// IsCurrentlyEnrolled reports whether the student holds a valid enrolment in
// the active semester.
func (r *StudentRepository) IsCurrentlyEnrolled(ctx context.Context, studentIndex string) (bool, error) {
	var enrolled bool
	query := `SELECT EXISTS (
    SELECT 1 FROM enrollments e
    JOIN semesters sem ON sem.code = e.semester_code
    WHERE e.student_index = $1 AND e.valid AND sem.active
)`
	if err := r.db.GetContext(ctx, &enrolled, query, studentIndex); err != nil {
		return false, fmt.Errorf("check enrolment for student %s: %w", studentIndex, err)
	}
	return enrolled, nil
}

// GetByIndex loads one student.
func (r *StudentRepository) GetByIndex(ctx context.Context, studentIndex string) (*models.Student, error) {
	var student models.Student
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_index = $1`
	if err := r.db.GetContext(ctx, &student, query, studentIndex); err != nil {
		return nil, fmt.Errorf("get student %s: %w", studentIndex, err)
	}
	return &student, nil
}

// List returns a page of students ordered by index.
func (r *StudentRepository) List(ctx context.Context, page, pageSize int) ([]models.Student, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM students ORDER BY student_index LIMIT %d OFFSET %d`, studentColumns, pageSize, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ByProfessor lists students enrolled on any subject the professor teaches.
func (r *StudentRepository) ByProfessor(ctx context.Context, professorID string) ([]models.Student, error) {
	query := `SELECT DISTINCT s.student_index, s.first_name, s.last_name, s.email, s.study_track
FROM students s
JOIN enrollments e ON e.student_index = s.student_index
JOIN scheduled_classes sc ON sc.subject_id = e.subject_id
WHERE sc.professor_id = $1
ORDER BY s.student_index`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, professorID); err != nil {
		return nil, fmt.Errorf("students for professor %s: %w", professorID, err)
	}
	return students, nil
}
