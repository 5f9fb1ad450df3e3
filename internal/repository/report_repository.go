package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// ReportRepository stores problem reports submitted from the mobile client.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Insert stores a new report.
func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.SubmittedAt.IsZero() {
		report.SubmittedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, student_index, subject, body, submitted_at) VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.StudentIndex, report.Subject, report.Body, report.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List returns reports newest first.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, student_index, subject, body, submitted_at FROM reports ORDER BY submitted_at DESC LIMIT %d`, limit)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
