package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSubmissionsSortsAndDropsAnonymous(t *testing.T) {
	payload := `[
		{"id": 1, "user_id": 30, "user": {"name": "Zoe Adams", "sortable_name": "Adams, Zoe"}},
		{"id": 2, "user_id": null, "workflow_state": "unsubmitted"},
		{"id": 3, "user_id": "12", "user": {"name": "Ann Baker", "sortable_name": "baker, ann"}},
		{"id": 4, "user_id": 11, "user": {"name": "Ann Baker", "sortable_name": "Baker, Ann"}},
		{"id": 5, "user_id": 0}
	]`
	var raw []wireSubmission
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	records := normalizeSubmissions(raw)
	require.Len(t, records, 3)
	assert.Equal(t, int64(30), records[0].UserID)
	assert.Equal(t, int64(11), records[1].UserID)
	assert.Equal(t, int64(12), records[2].UserID)
}

func TestNormalizeSubmissionFlags(t *testing.T) {
	payload := `{
		"user_id": 5,
		"late_policy_status": "missing",
		"submission_type": "online_upload",
		"workflow_state": "submitted",
		"group": {"id": "9", "name": "Team A"},
		"attachments": [{"id": 7, "filename": "essay.pdf", "content-type": "application/pdf", "size": "2048"}],
		"submission_comments": [{"id": 1, "author_name": "T", "comment": "<p>Nice&nbsp;work</p>"}],
		"rubric_assessment": {"c1": {"rating_id": "r2", "points": "3"}}
	}`
	var raw wireSubmission
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	record := normalizeSubmission(raw)
	assert.True(t, record.Missing)
	assert.False(t, record.Late)
	assert.True(t, record.HasSubmission)
	require.NotNil(t, record.GroupID)
	assert.Equal(t, int64(9), *record.GroupID)
	assert.Equal(t, "Team A", record.GroupName)

	require.Len(t, record.Attachments, 1)
	assert.Equal(t, "essay.pdf", record.Attachments[0].Name)
	assert.Equal(t, int64(2048), record.Attachments[0].Size)

	require.Len(t, record.Comments, 1)
	assert.Equal(t, "Nice work", record.Comments[0].Body)

	require.Contains(t, record.RubricAssessment, "c1")
	assert.Equal(t, "r2", record.RubricAssessment["c1"].RatingID)
	require.NotNil(t, record.RubricAssessment["c1"].Points)
	assert.Equal(t, 3.0, *record.RubricAssessment["c1"].Points)
}

func TestPlainTextLeavesPlainBodies(t *testing.T) {
	assert.Equal(t, "looks good", plainText("  looks good \n"))
}
