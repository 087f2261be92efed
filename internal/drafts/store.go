// Package drafts tracks locally edited grades, comments, statuses and rubric comments
// against the values last confirmed by the remote gradebook.
//
// A Store is not safe for concurrent use; its owner serializes access.
package drafts

import (
	"strings"

	"github.com/noah-isme/grading-assistant/internal/models"
)

// GroupField names a draft field that can be copied across a group.
type GroupField string

const (
	FieldGrade   GroupField = "grade"
	FieldComment GroupField = "comment"
)

// Store holds one DraftState per loaded student.
type Store struct {
	drafts      map[int64]models.DraftState
	submissions []models.SubmissionRecord
	byUser      map[int64]int
}

// CreateInitialDrafts seeds one draft per submission, with base and current equal.
func CreateInitialDrafts(submissions []models.SubmissionRecord) map[int64]models.DraftState {
	drafts := make(map[int64]models.DraftState, len(submissions))
	for _, s := range submissions {
		drafts[s.UserID] = newDraft(s)
	}
	return drafts
}

// NewStore builds a store over a freshly loaded submission set.
func NewStore(submissions []models.SubmissionRecord) *Store {
	subs := make([]models.SubmissionRecord, len(submissions))
	copy(subs, submissions)
	byUser := make(map[int64]int, len(subs))
	for i, s := range subs {
		byUser[s.UserID] = i
	}
	return &Store{
		drafts:      CreateInitialDrafts(subs),
		submissions: subs,
		byUser:      byUser,
	}
}

// Submissions returns the loaded submission set in load order.
func (s *Store) Submissions() []models.SubmissionRecord {
	out := make([]models.SubmissionRecord, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Draft returns a copy of one student's draft.
func (s *Store) Draft(userID int64) (models.DraftState, bool) {
	d, ok := s.drafts[userID]
	if !ok {
		return models.DraftState{}, false
	}
	return cloneDraft(d), true
}

// Drafts returns a copy of every draft keyed by user id.
func (s *Store) Drafts() map[int64]models.DraftState {
	out := make(map[int64]models.DraftState, len(s.drafts))
	for id, d := range s.drafts {
		out[id] = cloneDraft(d)
	}
	return out
}

// update applies fn to the draft of userID and recomputes its flags. It reports false,
// leaving the store untouched, when the student is unknown or fn rejects the edit.
func (s *Store) update(userID int64, fn func(*models.DraftState) bool) bool {
	d, ok := s.drafts[userID]
	if !ok {
		return false
	}
	d = cloneDraft(d)
	if !fn(&d) {
		return false
	}
	s.drafts[userID] = Recompute(d)
	return true
}

// SetGrade stages a grade from raw input. Non-numeric input is ignored.
func (s *Store) SetGrade(userID int64, raw string) bool {
	grade, ok := ParseGrade(raw)
	if !ok {
		return false
	}
	return s.update(userID, func(d *models.DraftState) bool {
		d.Grade = grade
		return true
	})
}

// SetComment stages the free-text comment.
func (s *Store) SetComment(userID int64, text string) bool {
	return s.update(userID, func(d *models.DraftState) bool {
		d.Comment = text
		return true
	})
}

// SetStatus stages one of the four submission statuses.
func (s *Store) SetStatus(userID int64, status models.SubmissionStatus) bool {
	if !status.Valid() {
		return false
	}
	return s.update(userID, func(d *models.DraftState) bool {
		d.Status = status
		return true
	})
}

// ValidCriterionID reports whether id can be used as a rubric form key segment.
func ValidCriterionID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "[]")
}

// SetRubricComment stages a comment on one rubric criterion. Any touch marks the rubric
// comments dirty until the next reconciliation.
func (s *Store) SetRubricComment(userID int64, criterionID, text string) bool {
	if !ValidCriterionID(criterionID) {
		return false
	}
	return s.update(userID, func(d *models.DraftState) bool {
		d.RubricComments[criterionID] = text
		d.RubricCommentsDirty = true
		return true
	})
}

// CopyToGroup stages value on every other member of the source student's group and
// returns how many drafts were updated. The source draft is left as is.
func (s *Store) CopyToGroup(sourceUserID int64, field GroupField, value string) int {
	idx, ok := s.byUser[sourceUserID]
	if !ok {
		return 0
	}
	groupID := s.submissions[idx].GroupID
	if groupID == nil {
		return 0
	}

	var apply func(*models.DraftState) bool
	switch field {
	case FieldGrade:
		grade, ok := ParseGrade(value)
		if !ok {
			return 0
		}
		apply = func(d *models.DraftState) bool {
			d.Grade = copyFloat(grade)
			return true
		}
	case FieldComment:
		apply = func(d *models.DraftState) bool {
			d.Comment = value
			return true
		}
	default:
		return 0
	}

	updated := 0
	for _, sub := range s.submissions {
		if sub.UserID == sourceUserID || sub.GroupID == nil || *sub.GroupID != *groupID {
			continue
		}
		if s.update(sub.UserID, apply) {
			updated++
		}
	}
	return updated
}

// ClearAll discards every staged edit.
func (s *Store) ClearAll() {
	for id, d := range s.drafts {
		s.drafts[id] = resetToBase(d)
	}
}

// ClearOne discards the staged edits of one student.
func (s *Store) ClearOne(userID int64) bool {
	d, ok := s.drafts[userID]
	if !ok {
		return false
	}
	s.drafts[userID] = resetToBase(d)
	return true
}

// Updates builds the update of every loaded student; see BuildUpdates.
func (s *Store) Updates() []models.SubmissionUpdate {
	return BuildUpdates(s.drafts, s.submissions)
}

// Stats computes the aggregate counters of the store.
func (s *Store) Stats() models.DraftStats {
	return Stats(s.drafts, s.submissions)
}
