package drafts

import "github.com/noah-isme/grading-assistant/internal/models"

// Snapshot returns copies of the dirty drafts only, ready to be autosaved.
func (s *Store) Snapshot() map[int64]models.DraftState {
	out := make(map[int64]models.DraftState)
	for id, d := range s.drafts {
		if d.Dirty() {
			out[id] = cloneDraft(d)
		}
	}
	return out
}

// Restore replays an autosaved snapshot over freshly created drafts and returns how many
// students were restored. Entries for students missing from the loaded set, and entries
// with no dirty flag, are discarded. Only the fields flagged dirty in the saved entry are
// replayed; the fresh bases are kept so dirtiness reflects the latest remote values.
func (s *Store) Restore(saved map[int64]models.DraftState) int {
	restored := 0
	for id, entry := range saved {
		if !entry.Dirty() {
			continue
		}
		ok := s.update(id, func(d *models.DraftState) bool {
			if entry.GradeDirty {
				d.Grade = copyFloat(entry.Grade)
			}
			if entry.CommentDirty {
				d.Comment = entry.Comment
			}
			if entry.StatusDirty && entry.Status.Valid() {
				d.Status = entry.Status
			}
			if entry.RubricCommentsDirty {
				for criterionID, text := range entry.RubricComments {
					d.RubricComments[criterionID] = text
				}
				d.RubricCommentsDirty = true
			}
			return true
		})
		if ok {
			restored++
		}
	}
	return restored
}
