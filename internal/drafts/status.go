package drafts

import "github.com/noah-isme/grading-assistant/internal/models"

// statusPriority lists remote statuses from strongest to weakest. The first flag set on a
// submission wins; none applies when no flag is set.
var statusPriority = []struct {
	status models.SubmissionStatus
	flag   func(models.SubmissionRecord) bool
}{
	{models.StatusExcused, func(s models.SubmissionRecord) bool { return s.Excused }},
	{models.StatusMissing, func(s models.SubmissionRecord) bool { return s.Missing }},
	{models.StatusLate, func(s models.SubmissionRecord) bool { return s.Late }},
}

// StatusOf derives the grader-facing status of a remote submission.
func StatusOf(s models.SubmissionRecord) models.SubmissionStatus {
	for _, candidate := range statusPriority {
		if candidate.flag(s) {
			return candidate.status
		}
	}
	return models.StatusNone
}

// StatusFromFlags is StatusOf for raw flags.
func StatusFromFlags(excused, missing, late bool) models.SubmissionStatus {
	return StatusOf(models.SubmissionRecord{Excused: excused, Missing: missing, Late: late})
}
