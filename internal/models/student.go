package models

// Student mirrors the directory entry owned by the enrolment subsystem.
type Student struct {
	StudentIndex string  `db:"student_index" json:"student_index"`
	FirstName    string  `db:"first_name" json:"first_name"`
	LastName     string  `db:"last_name" json:"last_name"`
	Email        *string `db:"email" json:"email,omitempty"`
	StudyTrack   *string `db:"study_track" json:"study_track,omitempty"`
}
