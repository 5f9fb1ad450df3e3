package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// DeviceRepository owns student_devices and device_link_requests. A partial
// unique index on (student_index) WHERE status = 'PENDING' keeps at most one
// open request per student.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository constructs the repository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// GetDevice returns the student's currently bound device.
func (r *DeviceRepository) GetDevice(ctx context.Context, studentIndex string) (*models.StudentDevice, error) {
	var device models.StudentDevice
	query := `SELECT student_index, device_id, device_name, device_os, updated_at
FROM student_devices WHERE student_index = $1`
	if err := r.db.GetContext(ctx, &device, query, studentIndex); err != nil {
		return nil, fmt.Errorf("get device for student %s: %w", studentIndex, err)
	}
	return &device, nil
}

// UpsertDevice binds a device to the student, overwriting any previous
// binding. Latest approval wins.
func (r *DeviceRepository) UpsertDevice(ctx context.Context, device *models.StudentDevice) error {
	device.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO student_devices (student_index, device_id, device_name, device_os, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_index) DO UPDATE SET
    device_id = EXCLUDED.device_id,
    device_name = EXCLUDED.device_name,
    device_os = EXCLUDED.device_os,
    updated_at = EXCLUDED.updated_at`,
		device.StudentIndex, device.DeviceID, device.DeviceName, device.DeviceOS, device.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert device for student %s: %w", device.StudentIndex, err)
	}
	return nil
}

const linkRequestColumns = `id, student_index, device_id, device_name, device_os, requested_at, status, notes`

// UpsertPendingRequest creates the student's pending link request, or
// overwrites the existing pending one (last writer wins on the pending slot).
func (r *DeviceRepository) UpsertPendingRequest(ctx context.Context, req *models.DeviceLinkRequest) (*models.DeviceLinkRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	query := `INSERT INTO device_link_requests (id, student_index, device_id, device_name, device_os, requested_at, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_index) WHERE status = 'PENDING' DO UPDATE SET
    device_id = EXCLUDED.device_id,
    device_name = EXCLUDED.device_name,
    device_os = EXCLUDED.device_os,
    requested_at = EXCLUDED.requested_at
RETURNING ` + linkRequestColumns
	var stored models.DeviceLinkRequest
	err := r.db.GetContext(ctx, &stored, query,
		req.ID, req.StudentIndex, req.DeviceID, req.DeviceName, req.DeviceOS, req.RequestedAt, models.DeviceLinkPending)
	if err != nil {
		return nil, fmt.Errorf("upsert pending link request for student %s: %w", req.StudentIndex, err)
	}
	return &stored, nil
}

// InsertResolvedRequest records an already-decided request, used for the
// first-time auto-registration audit trail.
func (r *DeviceRepository) InsertResolvedRequest(ctx context.Context, req *models.DeviceLinkRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_link_requests (id, student_index, device_id, device_name, device_os, requested_at, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.StudentIndex, req.DeviceID, req.DeviceName, req.DeviceOS, req.RequestedAt, req.Status, req.Notes)
	if err != nil {
		return fmt.Errorf("insert resolved link request for student %s: %w", req.StudentIndex, err)
	}
	return nil
}

// ListPending returns all open link requests, oldest first.
func (r *DeviceRepository) ListPending(ctx context.Context) ([]models.DeviceLinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM device_link_requests WHERE status = $1 ORDER BY requested_at`
	var rows []models.DeviceLinkRequest
	if err := r.db.SelectContext(ctx, &rows, query, models.DeviceLinkPending); err != nil {
		return nil, fmt.Errorf("list pending link requests: %w", err)
	}
	return rows, nil
}

// CountForStudentSince counts the student's link requests (any status)
// submitted at or after the window start, including the pending one.
func (r *DeviceRepository) CountForStudentSince(ctx context.Context, studentIndex string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM device_link_requests WHERE student_index = $1 AND requested_at >= $2`,
		studentIndex, since)
	if err != nil {
		return 0, fmt.Errorf("count link requests for student %s: %w", studentIndex, err)
	}
	return count, nil
}

// UpdateStatus finalises a request. Requests are never deleted.
func (r *DeviceRepository) UpdateStatus(ctx context.Context, id string, status models.DeviceLinkStatus, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE device_link_requests SET status = $2, notes = $3 WHERE id = $1`,
		id, status, notes)
	if err != nil {
		return fmt.Errorf("update link request %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update link request rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update link request: %s not found", id)
	}
	return nil
}
