package models

// SubmissionStatus is the grader-facing status of a submission.
type SubmissionStatus string

const (
	StatusNone    SubmissionStatus = "none"
	StatusLate    SubmissionStatus = "late"
	StatusMissing SubmissionStatus = "missing"
	StatusExcused SubmissionStatus = "excused"
)

// Valid reports whether s is one of the four known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusNone, StatusLate, StatusMissing, StatusExcused:
		return true
	}
	return false
}

// DraftState is the local editing surface for one student. Every current field is paired
// with the value last confirmed by the remote gradebook.
type DraftState struct {
	Grade              *float64          `json:"grade"`
	BaseGrade          *float64          `json:"baseGrade"`
	Comment            string            `json:"comment"`
	BaseComment        string            `json:"baseComment"`
	Status             SubmissionStatus  `json:"status"`
	BaseStatus         SubmissionStatus  `json:"baseStatus"`
	RubricComments     map[string]string `json:"rubricComments"`
	BaseRubricComments map[string]string `json:"baseRubricComments"`

	GradeDirty          bool `json:"gradeDirty"`
	CommentDirty        bool `json:"commentDirty"`
	StatusDirty         bool `json:"statusDirty"`
	RubricCommentsDirty bool `json:"rubricCommentsDirty"`
	Synced              bool `json:"synced"`
}

// Dirty reports whether any field is staged.
func (d DraftState) Dirty() bool {
	return d.GradeDirty || d.CommentDirty || d.StatusDirty || d.RubricCommentsDirty
}

// DraftStats are aggregate counters over the loaded submission set.
type DraftStats struct {
	Total          int `json:"total"`
	WithSubmission int `json:"withSubmission"`
	Graded         int `json:"graded"`
	Dirty          int `json:"dirty"`
}

// SubmissionUpdate is the per-student diff sent to the remote gradebook.
type SubmissionUpdate struct {
	UserID                int64                       `json:"userId" validate:"required,gt=0"`
	GradeChanged          bool                        `json:"gradeChanged"`
	Grade                 *float64                    `json:"grade"`
	CommentChanged        bool                        `json:"commentChanged"`
	Comment               string                      `json:"comment"`
	StatusChanged         bool                        `json:"statusChanged"`
	Status                SubmissionStatus            `json:"status" validate:"omitempty,oneof=none late missing excused"`
	RubricCommentsChanged bool                        `json:"rubricCommentsChanged"`
	RubricComments        map[string]string           `json:"rubricComments,omitempty" validate:"omitempty,dive,keys,required,excludesall=[],endkeys"`
	RubricAssessment      map[string]RubricAssessment `json:"rubricAssessment,omitempty" validate:"omitempty,dive,keys,required,excludesall=[],endkeys"`
}

// HasChanges reports whether at least one changed flag is set.
func (u SubmissionUpdate) HasChanges() bool {
	return u.GradeChanged || u.CommentChanged || u.StatusChanged || u.RubricCommentsChanged
}

// SyncResult is the outcome of pushing one SubmissionUpdate.
type SyncResult struct {
	UserID  int64  `json:"userId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
