package models

import "time"

// AttendanceStatus tracks the lifecycle of an attendance record.
// PRESENT and ABSENT are terminal; only a token reissue may touch a
// PENDING_VERIFICATION record after the fact.
type AttendanceStatus string

const (
	AttendancePendingVerification AttendanceStatus = "PENDING_VERIFICATION"
	AttendancePresent             AttendanceStatus = "PRESENT"
	AttendanceAbsent              AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePendingVerification, AttendancePresent, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status may no longer change through
// registration.
func (s AttendanceStatus) Terminal() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// AttendanceRecord is the per-student state for one class occurrence.
// Unique on (student_index, occurrence_id).
type AttendanceRecord struct {
	ID            string           `db:"id" json:"id"`
	StudentIndex  string           `db:"student_index" json:"student_index"`
	OccurrenceID  string           `db:"occurrence_id" json:"occurrence_id"`
	ArrivalTime   time.Time        `db:"arrival_time" json:"arrival_time"`
	Status        AttendanceStatus `db:"status" json:"status"`
	ProximityNote *string          `db:"proximity_note" json:"proximity_note,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRow extends a record with student metadata for listings.
type AttendanceRow struct {
	AttendanceRecord
	StudentName string `db:"student_name" json:"student_name"`
}

// AttendanceSummary aggregates a student's attendance for a semester.
type AttendanceSummary struct {
	Percentage      float64 `json:"percentage"`
	AttendedClasses int     `json:"attended_classes"`
	TotalClasses    int     `json:"total_classes"`
	Absences        int     `json:"absences"`
}

// AttendanceAggregate is the raw summary row produced by the repository.
type AttendanceAggregate struct {
	TotalClasses    int `db:"total_classes"`
	AttendedClasses int `db:"attended_classes"`
}
