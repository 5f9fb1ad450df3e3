package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edupulse/presence-api/internal/models"
)

// ProximityLogRepository is the append-only audit sink for beacon detections
// and verification summaries.
type ProximityLogRepository struct {
	db *sqlx.DB
}

// NewProximityLogRepository constructs the repository.
func NewProximityLogRepository(db *sqlx.DB) *ProximityLogRepository {
	return &ProximityLogRepository{db: db}
}

// Append writes one audit row.
func (r *ProximityLogRepository) Append(ctx context.Context, entry *models.ProximityVerificationLog) error {
	if entry.VerificationTime.IsZero() {
		entry.VerificationTime = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO proximity_verification_logs
(attendance_record_id, student_index, beacon_device_id, detected_room_id, expected_room_id,
 rssi, proximity_level, estimated_distance, verification_status, duration_seconds, beacon_type,
 session_token, verification_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.AttendanceRecordID, entry.StudentIndex, entry.BeaconDeviceID, entry.DetectedRoomID,
		entry.ExpectedRoomID, entry.RSSI, entry.ProximityLevel, entry.EstimatedDistance,
		entry.VerificationStatus, entry.DurationSeconds, entry.BeaconType, entry.SessionToken,
		entry.VerificationTime)
	if err != nil {
		return fmt.Errorf("append proximity log for student %s: %w", entry.StudentIndex, err)
	}
	return nil
}

// RoomAnalytics aggregates the audit trail for a room since a point in time.
func (r *ProximityLogRepository) RoomAnalytics(ctx context.Context, roomID string, from time.Time) (*models.RoomProximityAnalytics, error) {
	query := `SELECT COUNT(*) AS total,
    COUNT(*) FILTER (WHERE verification_status IN ('SUCCESS', 'SUCCESS_LOW_CONFIDENCE')) AS successful,
    COALESCE(AVG(estimated_distance), 0) AS avg_distance
FROM proximity_verification_logs
WHERE detected_room_id = $1 AND verification_time >= $2`
	var row struct {
		Total       int     `db:"total"`
		Successful  int     `db:"successful"`
		AvgDistance float64 `db:"avg_distance"`
	}
	if err := r.db.GetContext(ctx, &row, query, roomID, from); err != nil {
		return nil, fmt.Errorf("room analytics for %s: %w", roomID, err)
	}
	return &models.RoomProximityAnalytics{
		RoomID:                  roomID,
		TotalVerifications:      row.Total,
		SuccessfulVerifications: row.Successful,
		AverageDistance:         row.AvgDistance,
	}, nil
}
