package models

import "time"

// HistoryEntry records the outcome of pushing one student's edits.
type HistoryEntry struct {
	ID           string           `db:"id" json:"id"`
	BatchID      string           `db:"batch_id" json:"batchId"`
	CourseID     string           `db:"course_id" json:"courseId"`
	AssignmentID string           `db:"assignment_id" json:"assignmentId"`
	UserID       int64            `db:"user_id" json:"userId"`
	Grade        *float64         `db:"grade" json:"grade"`
	Comment      *string          `db:"comment" json:"comment,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Success      bool             `db:"success" json:"success"`
	Error        *string          `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	AssignmentID string
	UserID       int64
	Limit        int
}
