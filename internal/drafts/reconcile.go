package drafts

import "github.com/noah-isme/grading-assistant/internal/models"

// ReconcilePolicy selects which bases advance after a confirmed push. Grade and comment
// always advance. A field whose base does not advance stays staged for the next flush.
type ReconcilePolicy struct {
	AdvanceStatusBase bool
	AdvanceRubricBase bool
}

// DefaultReconcilePolicy advances every base.
func DefaultReconcilePolicy() ReconcilePolicy {
	return ReconcilePolicy{AdvanceStatusBase: true, AdvanceRubricBase: true}
}

// Reconcile advances the bases of every successfully synced student and returns how many
// drafts were reconciled. Failed results leave their drafts untouched for a manual retry.
func (s *Store) Reconcile(results []models.SyncResult, policy ReconcilePolicy) int {
	reconciled := 0
	for _, r := range results {
		if !r.Success {
			continue
		}
		ok := s.update(r.UserID, func(d *models.DraftState) bool {
			d.BaseGrade = copyFloat(d.Grade)
			d.BaseComment = d.Comment
			if policy.AdvanceStatusBase {
				d.BaseStatus = d.Status
			}
			if policy.AdvanceRubricBase {
				d.BaseRubricComments = cloneStrings(d.RubricComments)
				d.RubricCommentsDirty = false
			}
			return true
		})
		if ok {
			reconciled++
		}
	}
	return reconciled
}
