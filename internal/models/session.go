package models

import "time"

// ClientStateKey names one persisted blob of frontend state.
type ClientStateKey string

const (
	StateAutosave      ClientStateKey = "autosave"
	StateHistory       ClientStateKey = "history"
	StateUIPreferences ClientStateKey = "ui-preferences"
	StateDarkMode      ClientStateKey = "dark-mode"
	StateLastSession   ClientStateKey = "last-session"
)

// LastSession points at where the grader left off.
type LastSession struct {
	CourseID     string    `json:"courseId"`
	AssignmentID string    `json:"assignmentId"`
	UserID       int64     `json:"userId,omitempty"`
	Field        string    `json:"field,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionState is everything a frontend needs to render the grading view.
type SessionState struct {
	CourseID     string               `json:"courseId"`
	AssignmentID string               `json:"assignmentId"`
	LoadedAt     *time.Time           `json:"loadedAt,omitempty"`
	Submissions  []SubmissionRecord   `json:"submissions"`
	Drafts       map[int64]DraftState `json:"drafts"`
	Stats        DraftStats           `json:"stats"`
	Restored     int                  `json:"restored,omitempty"`
}

// SyncSummary reports the outcome of one flush.
type SyncSummary struct {
	BatchID string       `json:"batchId,omitempty"`
	Synced  int          `json:"synced"`
	Failed  int          `json:"failed"`
	Results []SyncResult `json:"results"`
	Message string       `json:"message"`
	Stats   DraftStats   `json:"stats"`
}
