package models

import "time"

// ClassOccurrence is one concrete meeting of a scheduled class. The scheduling
// subsystem owns these rows; this service only reads them and maintains the
// attendance token columns.
type ClassOccurrence struct {
	ID           string     `db:"id" json:"id"`
	ScheduledID  string     `db:"scheduled_class_id" json:"scheduled_class_id"`
	ProfessorID  string     `db:"professor_id" json:"professor_id"`
	RoomID       string     `db:"room_id" json:"room_id"`
	Date         time.Time  `db:"date" json:"date"`
	StartTime    time.Time  `db:"start_time" json:"start_time"`
	EndTime      time.Time  `db:"end_time" json:"end_time"`
	Token        *string    `db:"attendance_token" json:"-"`
	TokenExpires *time.Time `db:"token_expires_at" json:"-"`
}

// SessionToken is the short-lived secret proving a student scanned the live
// QR code for an occurrence. One active token per occurrence; reissue replaces.
type SessionToken struct {
	OccurrenceID string    `json:"occurrence_id"`
	Secret       string    `json:"secret"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// OccurrenceOverview joins an occurrence with its course metadata for
// professor and student schedule views.
type OccurrenceOverview struct {
	ClassOccurrence
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	RoomName    string `db:"room_name" json:"room_name"`
}
