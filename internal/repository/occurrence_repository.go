package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// OccurrenceRepository reads class occurrences and maintains their attendance
// token columns. Occurrence rows themselves belong to the scheduling system.
type OccurrenceRepository struct {
	db *sqlx.DB
}

// NewOccurrenceRepository constructs the repository.
func NewOccurrenceRepository(db *sqlx.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

const occurrenceColumns = `id, scheduled_class_id, professor_id, room_id, date, start_time, end_time, attendance_token, token_expires_at`

// GetByID loads a single occurrence.
func (r *OccurrenceRepository) GetByID(ctx context.Context, id string) (*models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_occurrences WHERE id = $1`, occurrenceColumns)
	var occ models.ClassOccurrence
	if err := r.db.GetContext(ctx, &occ, query, id); err != nil {
		return nil, fmt.Errorf("get occurrence %s: %w", id, err)
	}
	return &occ, nil
}

// FindByToken resolves the occurrence currently holding the given session
// token secret.
func (r *OccurrenceRepository) FindByToken(ctx context.Context, secret string) (*models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_occurrences WHERE attendance_token = $1`, occurrenceColumns)
	var occ models.ClassOccurrence
	if err := r.db.GetContext(ctx, &occ, query, secret); err != nil {
		return nil, fmt.Errorf("find occurrence by token: %w", err)
	}
	return &occ, nil
}

// SetToken stores a fresh token secret and expiry on the occurrence row,
// replacing any previous token.
func (r *OccurrenceRepository) SetToken(ctx context.Context, occurrenceID, secret string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE class_occurrences SET attendance_token = $2, token_expires_at = $3 WHERE id = $1`,
		occurrenceID, secret, expiresAt)
	if err != nil {
		return fmt.Errorf("set token for occurrence %s: %w", occurrenceID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set token rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set token: occurrence %s not found", occurrenceID)
	}
	return nil
}

// ByProfessorBetween lists a professor's occurrences between two dates
// inclusive, joined with course metadata.
func (r *OccurrenceRepository) ByProfessorBetween(ctx context.Context, professorID string, from, to time.Time) ([]models.OccurrenceOverview, error) {
	query := `SELECT ` + prefixedOccurrenceColumns + `, sc.subject_id, sub.name AS subject_name, rm.name AS room_name
FROM class_occurrences co
JOIN scheduled_classes sc ON sc.id = co.scheduled_class_id
JOIN subjects sub ON sub.id = sc.subject_id
JOIN rooms rm ON rm.id = co.room_id
WHERE co.professor_id = $1 AND co.date BETWEEN $2 AND $3
ORDER BY co.date, co.start_time`
	var rows []models.OccurrenceOverview
	if err := r.db.SelectContext(ctx, &rows, query, professorID, from, to); err != nil {
		return nil, fmt.Errorf("occurrences for professor %s: %w", professorID, err)
	}
	return rows, nil
}

// ActiveForStudentAt lists the occurrences a student is enrolled in that are
// running at the given instant.
func (r *OccurrenceRepository) ActiveForStudentAt(ctx context.Context, studentIndex string, at time.Time) ([]models.OccurrenceOverview, error) {
	query := `SELECT ` + prefixedOccurrenceColumns + `, sc.subject_id, sub.name AS subject_name, rm.name AS room_name
FROM class_occurrences co
JOIN scheduled_classes sc ON sc.id = co.scheduled_class_id
JOIN subjects sub ON sub.id = sc.subject_id
JOIN rooms rm ON rm.id = co.room_id
JOIN enrollments e ON e.subject_id = sc.subject_id
WHERE e.student_index = $1 AND co.date = $2::date AND co.start_time <= $2 AND co.end_time >= $2
ORDER BY co.start_time`
	var rows []models.OccurrenceOverview
	if err := r.db.SelectContext(ctx, &rows, query, studentIndex, at); err != nil {
		return nil, fmt.Errorf("active occurrences for student %s: %w", studentIndex, err)
	}
	return rows, nil
}

const prefixedOccurrenceColumns = `co.id, co.scheduled_class_id, co.professor_id, co.room_id, co.date, co.start_time, co.end_time, co.attendance_token, co.token_expires_at`
