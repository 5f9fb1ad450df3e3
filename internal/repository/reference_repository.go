package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// ReferenceRepository serves read-only scheduling reference data.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListRooms returns all rooms ordered by name.
func (r *ReferenceRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, `SELECT id, name, building, capacity FROM rooms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// GetRoom loads a single room.
func (r *ReferenceRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.GetContext(ctx, &room, `SELECT id, name, building, capacity FROM rooms WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	return &room, nil
}

// ListSubjects returns subjects, optionally filtered by semester.
func (r *ReferenceRepository) ListSubjects(ctx context.Context, semester string) ([]models.Subject, error) {
	var subjects []models.Subject
	if semester != "" {
		if err := r.db.SelectContext(ctx, &subjects, `SELECT id, name, semester FROM subjects WHERE semester = $1 ORDER BY name`, semester); err != nil {
			return nil, fmt.Errorf("list subjects for semester %s: %w", semester, err)
		}
		return subjects, nil
	}
	if err := r.db.SelectContext(ctx, &subjects, `SELECT id, name, semester FROM subjects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListSemesters returns all semesters, most recent first.
func (r *ReferenceRepository) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, `SELECT code, name, active FROM semesters ORDER BY code DESC`); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}
