package models

import "time"

// SubmissionRecord is the normalized view of one student's submission on the remote gradebook.
// It is replaced wholesale on every fetch.
type SubmissionRecord struct {
	UserID           int64                       `json:"userId"`
	UserName         string                      `json:"userName"`
	SortableName     string                      `json:"sortableName,omitempty"`
	GroupID          *int64                      `json:"groupId,omitempty"`
	GroupName        string                      `json:"groupName,omitempty"`
	HasSubmission    bool                        `json:"hasSubmission"`
	SubmittedAt      *time.Time                  `json:"submittedAt,omitempty"`
	Late             bool                        `json:"late"`
	Missing          bool                        `json:"missing"`
	Excused          bool                        `json:"excused"`
	SecondsLate      int64                       `json:"secondsLate"`
	Score            *float64                    `json:"score"`
	Grade            string                      `json:"grade,omitempty"`
	WorkflowState    string                      `json:"workflowState,omitempty"`
	Attachments      []Attachment                `json:"attachments"`
	Comments         []Comment                   `json:"comments"`
	RubricAssessment map[string]RubricAssessment `json:"rubricAssessment,omitempty"`
}

// Attachment is a file uploaded with a submission.
type Attachment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"-"`
}

// Comment is an existing remote submission comment, rendered as plain text.
type Comment struct {
	ID         int64      `json:"id"`
	AuthorName string     `json:"authorName"`
	Body       string     `json:"body"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// RubricAssessment is the assessment of one rubric criterion.
type RubricAssessment struct {
	RatingID string   `json:"ratingId,omitempty"`
	Comments string   `json:"comments"`
	Points   *float64 `json:"points,omitempty"`
}

// InGroup reports whether the record belongs to a group submission.
func (s SubmissionRecord) InGroup() bool {
	return s.GroupID != nil
}
