package drafts

import (
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/grading-assistant/internal/models"
)

// Recompute derives the dirty flags and synced state of d from its (current, base) pairs.
// The rubric flag is a touch marker and is carried over unchanged.
func Recompute(d models.DraftState) models.DraftState {
	d.GradeDirty = !gradesEqual(d.Grade, d.BaseGrade)
	d.CommentDirty = d.Comment != d.BaseComment
	d.StatusDirty = d.Status != d.BaseStatus
	d.Synced = !d.Dirty()
	return d
}

// newDraft seeds a draft from the remote record with base and current equal.
func newDraft(s models.SubmissionRecord) models.DraftState {
	rubric := make(map[string]string, len(s.RubricAssessment))
	for criterionID, assessment := range s.RubricAssessment {
		rubric[criterionID] = assessment.Comments
	}
	status := StatusOf(s)
	return Recompute(models.DraftState{
		Grade:              copyFloat(s.Score),
		BaseGrade:          copyFloat(s.Score),
		Comment:            "",
		BaseComment:        "",
		Status:             status,
		BaseStatus:         status,
		RubricComments:     rubric,
		BaseRubricComments: cloneStrings(rubric),
	})
}

// resetToBase discards every staged edit of d.
func resetToBase(d models.DraftState) models.DraftState {
	d.Grade = copyFloat(d.BaseGrade)
	d.Comment = d.BaseComment
	d.Status = d.BaseStatus
	d.RubricComments = cloneStrings(d.BaseRubricComments)
	d.RubricCommentsDirty = false
	return Recompute(d)
}

// ParseGrade turns raw grader input into a grade. Empty input clears the grade; anything
// that is not a finite number is rejected.
func ParseGrade(raw string) (*float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, true
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, false
	}
	return &value, true
}

func gradesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneDraft(d models.DraftState) models.DraftState {
	d.Grade = copyFloat(d.Grade)
	d.BaseGrade = copyFloat(d.BaseGrade)
	d.RubricComments = cloneStrings(d.RubricComments)
	d.BaseRubricComments = cloneStrings(d.BaseRubricComments)
	return d
}
