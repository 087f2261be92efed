package remote

import (
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/grading-assistant/internal/models"
)

var commentPolicy = bluemonday.StrictPolicy()

var lineBreaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "</p>\n")

// plainText renders a remote HTML comment body as trimmed plain text.
func plainText(body string) string {
	if !strings.ContainsAny(body, "<&") {
		return strings.TrimSpace(body)
	}
	text := html.UnescapeString(commentPolicy.Sanitize(lineBreaks.Replace(body)))
	return strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
}

// normalizeSubmissions reshapes remote submissions into records sorted by student name.
// Records without a student are dropped.
func normalizeSubmissions(raw []wireSubmission) []models.SubmissionRecord {
	records := make([]models.SubmissionRecord, 0, len(raw))
	for _, s := range raw {
		if !s.UserID.Valid || s.UserID.Value == 0 {
			continue
		}
		records = append(records, normalizeSubmission(s))
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := sortKey(records[i]), sortKey(records[j])
		if a != b {
			return a < b
		}
		return records[i].UserID < records[j].UserID
	})
	return records
}

func sortKey(r models.SubmissionRecord) string {
	if r.SortableName != "" {
		return strings.ToLower(r.SortableName)
	}
	return strings.ToLower(r.UserName)
}

func normalizeSubmission(s wireSubmission) models.SubmissionRecord {
	record := models.SubmissionRecord{
		UserID:        s.UserID.Value,
		SubmittedAt:   s.SubmittedAt,
		Late:          deref(s.Late),
		Missing:       deref(s.Missing),
		Excused:       deref(s.Excused),
		SecondsLate:   s.SecondsLate.Value,
		Score:         s.Score.ptr(),
		Grade:         string(s.Grade),
		WorkflowState: s.WorkflowState,
		Attachments:   make([]models.Attachment, 0, len(s.Attachments)),
		Comments:      make([]models.Comment, 0, len(s.Comments)),
	}

	// Older payloads only carry late_policy_status.
	switch strings.ToLower(string(s.LatePolicyStatus)) {
	case "late":
		record.Late = true
	case "missing":
		record.Missing = true
	}

	record.HasSubmission = s.SubmittedAt != nil ||
		(string(s.SubmissionType) != "" && s.WorkflowState != "unsubmitted") ||
		len(s.Attachments) > 0

	if s.User != nil {
		record.UserName = strings.TrimSpace(s.User.Name)
		record.SortableName = strings.TrimSpace(s.User.SortableName)
	}
	if record.UserName == "" {
		record.UserName = record.SortableName
	}

	if s.Group != nil && s.Group.ID.Valid {
		record.GroupID = s.Group.ID.ptr()
		record.GroupName = string(s.Group.Name)
	}

	for _, a := range s.Attachments {
		name := a.DisplayName
		if name == "" {
			name = a.Filename
		}
		record.Attachments = append(record.Attachments, models.Attachment{
			ID:          a.ID.Value,
			Name:        name,
			ContentType: string(a.ContentType),
			Size:        a.Size.Value,
			URL:         a.URL,
		})
	}

	for _, c := range s.Comments {
		record.Comments = append(record.Comments, models.Comment{
			ID:         c.ID.Value,
			AuthorName: c.AuthorName,
			Body:       plainText(c.Comment),
			CreatedAt:  c.CreatedAt,
		})
	}

	if len(s.RubricAssessment) > 0 {
		record.RubricAssessment = make(map[string]models.RubricAssessment, len(s.RubricAssessment))
		for criterionID, a := range s.RubricAssessment {
			record.RubricAssessment[criterionID] = models.RubricAssessment{
				RatingID: string(a.RatingID),
				Comments: string(a.Comments),
				Points:   a.Points.ptr(),
			}
		}
	}

	return record
}

func normalizeAssignmentDetails(a wireAssignment) models.AssignmentDetails {
	details := models.AssignmentDetails{
		ID:              a.ID.Value,
		Name:            a.Name,
		Description:     string(a.Description),
		DueAt:           a.DueAt,
		PointsPossible:  a.PointsPossible.ptr(),
		GradingType:     a.GradingType,
		GroupCategoryID: a.GroupCategoryID.ptr(),
		HTMLURL:         a.HTMLURL,
		Rubric:          make([]models.RubricCriterion, 0, len(a.Rubric)),
	}
	for _, c := range a.Rubric {
		criterion := models.RubricCriterion{
			ID:          string(c.ID),
			Description: c.Description,
			LongText:    c.LongDescription,
			Points:      c.Points.Value,
			Ratings:     make([]models.RubricRating, 0, len(c.Ratings)),
		}
		for _, r := range c.Ratings {
			criterion.Ratings = append(criterion.Ratings, models.RubricRating{
				ID:          string(r.ID),
				Description: r.Description,
				Points:      r.Points.Value,
			})
		}
		details.Rubric = append(details.Rubric, criterion)
	}
	return details
}

func normalizeAssignmentSummary(a wireAssignment, summary *wireSubmissionSummary) models.AssignmentSummary {
	out := models.AssignmentSummary{
		ID:                a.ID.Value,
		Name:              a.Name,
		DueAt:             a.DueAt,
		PointsPossible:    a.PointsPossible.ptr(),
		Published:         a.Published,
		GroupCategoryID:   a.GroupCategoryID.ptr(),
		NeedsGradingCount: int(a.NeedsGradingCount.Value),
	}
	if summary != nil {
		out.SubmissionCount = int(summary.Graded.Value + summary.Ungraded.Value)
		out.GradedCount = int(summary.Graded.Value)
	}
	return out
}

func deref(b *bool) bool {
	return b != nil && *b
}
