package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// AttendanceRepository owns all writes to attendance_records. The table
// carries a unique constraint on (student_index, occurrence_id) so concurrent
// duplicate registrations collapse into a single row.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, student_index, occurrence_id, arrival_time, status, proximity_note, created_at, updated_at`

// RegisterScan performs the conditional upsert for a QR scan: a new row
// starts in PENDING_VERIFICATION; an existing pending row gets its arrival
// time refreshed; a terminal row is returned untouched. The whole decision
// runs inside one statement so concurrent scans for the same pair cannot
// produce duplicates.
func (r *AttendanceRepository) RegisterScan(ctx context.Context, studentIndex, occurrenceID string, arrival time.Time) (*models.AttendanceRecord, error) {
	query := `INSERT INTO attendance_records (id, student_index, occurrence_id, arrival_time, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (student_index, occurrence_id) DO UPDATE SET
    arrival_time = CASE WHEN attendance_records.status = $5 THEN EXCLUDED.arrival_time ELSE attendance_records.arrival_time END,
    updated_at   = CASE WHEN attendance_records.status = $5 THEN EXCLUDED.updated_at ELSE attendance_records.updated_at END
RETURNING ` + attendanceColumns
	var record models.AttendanceRecord
	err := r.db.GetContext(ctx, &record, query,
		uuid.NewString(), studentIndex, occurrenceID, arrival,
		models.AttendancePendingVerification, arrival.UTC())
	if err != nil {
		return nil, fmt.Errorf("register scan for student %s occurrence %s: %w", studentIndex, occurrenceID, err)
	}
	return &record, nil
}

// GetByID loads a single attendance record.
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("get attendance record %s: %w", id, err)
	}
	return &record, nil
}

// ApplyVerdict writes a terminal status and note, but only while the record
// is still pending. Returns false when the guard rejected the write, which
// means another writer already decided the record.
func (r *AttendanceRepository) ApplyVerdict(ctx context.Context, id string, status models.AttendanceStatus, note *string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attendance_records SET status = $2, proximity_note = $3, updated_at = $4
WHERE id = $1 AND status = $5`,
		id, status, note, time.Now().UTC(), models.AttendancePendingVerification)
	if err != nil {
		return false, fmt.Errorf("apply verdict to attendance record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply verdict rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetPendingForOccurrence clears the note on every non-terminal record of
// an occurrence so students can re-scan against a fresh token. Terminal rows
// are deliberately excluded by the status guard.
func (r *AttendanceRepository) ResetPendingForOccurrence(ctx context.Context, occurrenceID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attendance_records SET status = $2, proximity_note = NULL, updated_at = $3
WHERE occurrence_id = $1 AND status = $2`,
		occurrenceID, models.AttendancePendingVerification, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reset pending records for occurrence %s: %w", occurrenceID, err)
	}
	return nil
}

// ListByOccurrence returns every attendance row for an occurrence joined
// with student names, ordered by arrival.
func (r *AttendanceRepository) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.AttendanceRow, error) {
	query := `SELECT ar.id, ar.student_index, ar.occurrence_id, ar.arrival_time, ar.status, ar.proximity_note, ar.created_at, ar.updated_at,
    s.first_name || ' ' || s.last_name AS student_name
FROM attendance_records ar
JOIN students s ON s.student_index = ar.student_index
WHERE ar.occurrence_id = $1
ORDER BY ar.arrival_time`
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, occurrenceID); err != nil {
		return nil, fmt.Errorf("list attendance for occurrence %s: %w", occurrenceID, err)
	}
	return rows, nil
}

// HistoryBetween returns a student's records whose occurrence falls inside
// the date range.
func (r *AttendanceRepository) HistoryBetween(ctx context.Context, studentIndex string, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT ar.id, ar.student_index, ar.occurrence_id, ar.arrival_time, ar.status, ar.proximity_note, ar.created_at, ar.updated_at
FROM attendance_records ar
JOIN class_occurrences co ON co.id = ar.occurrence_id
WHERE ar.student_index = $1 AND co.date BETWEEN $2 AND $3
ORDER BY co.date DESC, co.start_time DESC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, studentIndex, from, to); err != nil {
		return nil, fmt.Errorf("attendance history for student %s: %w", studentIndex, err)
	}
	return rows, nil
}

// SummaryForSemester aggregates attended vs total occurrences for a student
// within one semester. Returns nil when the student has no rows at all.
func (r *AttendanceRepository) SummaryForSemester(ctx context.Context, studentIndex, semester string) (*models.AttendanceAggregate, error) {
	query := `SELECT COUNT(*) AS total_classes,
    COUNT(*) FILTER (WHERE ar.status = 'PRESENT') AS attended_classes
FROM attendance_records ar
JOIN class_occurrences co ON co.id = ar.occurrence_id
JOIN scheduled_classes sc ON sc.id = co.scheduled_class_id
JOIN subjects sub ON sub.id = sc.subject_id
WHERE ar.student_index = $1 AND sub.semester = $2`
	var agg models.AttendanceAggregate
	if err := r.db.GetContext(ctx, &agg, query, studentIndex, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("attendance summary for student %s semester %s: %w", studentIndex, semester, err)
	}
	return &agg, nil
}
