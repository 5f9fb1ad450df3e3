package models

import "time"

// StudentDevice is the single device identity currently trusted for a
// student. Latest approval wins; at most one row per student.
type StudentDevice struct {
	StudentIndex string    `db:"student_index" json:"student_index"`
	DeviceID     string    `db:"device_id" json:"device_id"`
	DeviceName   string    `db:"device_name" json:"device_name"`
	DeviceOS     string    `db:"device_os" json:"device_os"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DeviceLinkStatus is the lifecycle of a device link request.
type DeviceLinkStatus string

const (
	DeviceLinkPending          DeviceLinkStatus = "PENDING"
	DeviceLinkAutoApproved     DeviceLinkStatus = "AUTO_APPROVED"
	DeviceLinkFlaggedForReview DeviceLinkStatus = "FLAGGED_FOR_REVIEW"
)

// DeviceLinkRequest records a student's ask to bind a new device. Rows are
// never deleted; resolved requests remain as an audit trail.
type DeviceLinkRequest struct {
	ID           string           `db:"id" json:"id"`
	StudentIndex string           `db:"student_index" json:"student_index"`
	DeviceID     string           `db:"device_id" json:"device_id"`
	DeviceName   string           `db:"device_name" json:"device_name"`
	DeviceOS     string           `db:"device_os" json:"device_os"`
	RequestedAt  time.Time        `db:"requested_at" json:"requested_at"`
	Status       DeviceLinkStatus `db:"status" json:"status"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
}
