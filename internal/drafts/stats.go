package drafts

import "github.com/noah-isme/grading-assistant/internal/models"

// Stats projects aggregate counters from the drafts and the submission set. It is
// recomputed on demand; at tens to hundreds of students per assignment a full pass is
// cheaper than keeping counters in step with every edit.
func Stats(drafts map[int64]models.DraftState, submissions []models.SubmissionRecord) models.DraftStats {
	stats := models.DraftStats{Total: len(submissions)}
	for _, sub := range submissions {
		if sub.HasSubmission {
			stats.WithSubmission++
		}
		d, ok := drafts[sub.UserID]
		if !ok {
			if sub.Score != nil {
				stats.Graded++
			}
			continue
		}
		if d.Grade != nil {
			stats.Graded++
		}
		if d.Dirty() {
			stats.Dirty++
		}
	}
	return stats
}
