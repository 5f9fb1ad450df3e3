package models

import "time"

// Report is a problem report submitted from the mobile client.
type Report struct {
	ID           string    `db:"id" json:"id"`
	StudentIndex *string   `db:"student_index" json:"student_index,omitempty"`
	Subject      string    `db:"subject" json:"subject"`
	Body         string    `db:"body" json:"body"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// PresentationLink is a cached pointer to the slide deck for an occurrence.
type PresentationLink struct {
	OccurrenceID string    `json:"occurrence_id"`
	URL          string    `json:"url"`
	UploadedBy   string    `json:"uploaded_by"`
	CachedAt     time.Time `json:"cached_at"`
}
