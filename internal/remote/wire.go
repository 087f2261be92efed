package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The remote API may return ids and scores as numbers or strings, and fills absent
// values with null. The flex types accept all of them.

type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	raw, isNull, err := scalar(b)
	if err != nil || isNull {
		*f = flexInt{}
		return err
	}
	if raw == "" {
		*f = flexInt{}
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fv, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || fv != float64(int64(fv)) {
			return fmt.Errorf("invalid integer %q", raw)
		}
		v = int64(fv)
	}
	*f = flexInt{Value: v, Valid: true}
	return nil
}

func (f flexInt) ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	raw, isNull, err := scalar(b)
	if err != nil || isNull || raw == "" {
		*f = flexFloat{}
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*f = flexFloat{Value: v, Valid: true}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	raw, isNull, err := scalar(b)
	if err != nil || isNull {
		*f = ""
		return err
	}
	*f = flexString(raw)
	return nil
}

// scalar unwraps a JSON number, string, boolean or null into its textual form.
func scalar(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", true, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(s), false, nil
	}
	if b[0] == '{' || b[0] == '[' {
		return "", false, fmt.Errorf("unexpected composite value %s", truncate(string(b), 32))
	}
	return string(b), false, nil
}

type wireUser struct {
	ID           flexInt `json:"id"`
	Name         string  `json:"name"`
	SortableName string  `json:"sortable_name"`
}

type wireGroup struct {
	ID   flexInt    `json:"id"`
	Name flexString `json:"name"`
}

type wireAttachment struct {
	ID          flexInt    `json:"id"`
	DisplayName string     `json:"display_name"`
	Filename    string     `json:"filename"`
	ContentType flexString `json:"content-type"`
	Size        flexInt    `json:"size"`
	URL         string     `json:"url"`
}

type wireComment struct {
	ID         flexInt    `json:"id"`
	AuthorName string     `json:"author_name"`
	Comment    string     `json:"comment"`
	CreatedAt  *time.Time `json:"created_at"`
}

type wireAssessment struct {
	RatingID flexString `json:"rating_id"`
	Comments flexString `json:"comments"`
	Points   flexFloat  `json:"points"`
}

type wireSubmission struct {
	ID               flexInt                   `json:"id"`
	UserID           flexInt                   `json:"user_id"`
	Score            flexFloat                 `json:"score"`
	Grade            flexString                `json:"grade"`
	SubmittedAt      *time.Time                `json:"submitted_at"`
	WorkflowState    string                    `json:"workflow_state"`
	SubmissionType   flexString                `json:"submission_type"`
	Late             *bool                     `json:"late"`
	Missing          *bool                     `json:"missing"`
	Excused          *bool                     `json:"excused"`
	LatePolicyStatus flexString                `json:"late_policy_status"`
	SecondsLate      flexInt                   `json:"seconds_late"`
	Attachments      []wireAttachment          `json:"attachments"`
	Comments         []wireComment             `json:"submission_comments"`
	RubricAssessment map[string]wireAssessment `json:"rubric_assessment"`
	User             *wireUser                 `json:"user"`
	Group            *wireGroup                `json:"group"`
}

type wireRating struct {
	ID          flexString `json:"id"`
	Description string     `json:"description"`
	Points      flexFloat  `json:"points"`
}

type wireCriterion struct {
	ID              flexString   `json:"id"`
	Description     string       `json:"description"`
	LongDescription string       `json:"long_description"`
	Points          flexFloat    `json:"points"`
	Ratings         []wireRating `json:"ratings"`
}

type wireAssignment struct {
	ID                flexInt         `json:"id"`
	Name              string          `json:"name"`
	Description       flexString      `json:"description"`
	DueAt             *time.Time      `json:"due_at"`
	PointsPossible    flexFloat       `json:"points_possible"`
	GradingType       string          `json:"grading_type"`
	Published         bool            `json:"published"`
	GroupCategoryID   flexInt         `json:"group_category_id"`
	HTMLURL           string          `json:"html_url"`
	NeedsGradingCount flexInt         `json:"needs_grading_count"`
	Rubric            []wireCriterion `json:"rubric"`
}

type wireSubmissionSummary struct {
	Graded       flexInt `json:"graded"`
	Ungraded     flexInt `json:"ungraded"`
	NotSubmitted flexInt `json:"not_submitted"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
