package drafts

import "github.com/noah-isme/grading-assistant/internal/models"

// BuildUpdates emits one update per submission that has a draft, dirty or not, in
// submission order. Callers pass the result through FilterChanged before sending, so an
// empty filtered list means "nothing to sync" while an empty build means "no drafts".
func BuildUpdates(drafts map[int64]models.DraftState, submissions []models.SubmissionRecord) []models.SubmissionUpdate {
	updates := make([]models.SubmissionUpdate, 0, len(submissions))
	for _, sub := range submissions {
		d, ok := drafts[sub.UserID]
		if !ok {
			continue
		}
		update := models.SubmissionUpdate{
			UserID:                sub.UserID,
			GradeChanged:          d.GradeDirty,
			Grade:                 copyFloat(d.Grade),
			CommentChanged:        d.CommentDirty,
			Comment:               d.Comment,
			StatusChanged:         d.StatusDirty,
			Status:                d.Status,
			RubricCommentsChanged: d.RubricCommentsDirty,
			RubricComments:        cloneStrings(d.RubricComments),
		}
		if len(sub.RubricAssessment) > 0 {
			update.RubricAssessment = make(map[string]models.RubricAssessment, len(sub.RubricAssessment))
			for id, a := range sub.RubricAssessment {
				a.Points = copyFloat(a.Points)
				update.RubricAssessment[id] = a
			}
		}
		updates = append(updates, update)
	}
	return updates
}

// FilterChanged keeps the updates with at least one changed field, preserving order.
func FilterChanged(updates []models.SubmissionUpdate) []models.SubmissionUpdate {
	out := make([]models.SubmissionUpdate, 0, len(updates))
	for _, u := range updates {
		if u.HasChanges() {
			out = append(out, u)
		}
	}
	return out
}
