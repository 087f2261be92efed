package drafts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-assistant/internal/models"
)

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int64) *int64 { return &v }

func sampleSubmissions() []models.SubmissionRecord {
	return []models.SubmissionRecord{
		{UserID: 1, UserName: "Ada", HasSubmission: true, Score: ptrFloat(92), GroupID: ptrInt(5)},
		{UserID: 2, UserName: "Brook", HasSubmission: true, Late: true, GroupID: ptrInt(5),
			RubricAssessment: map[string]models.RubricAssessment{"c1": {RatingID: "r1", Comments: "solid", Points: ptrFloat(4)}}},
		{UserID: 3, UserName: "Cass", Missing: true, Late: true},
		{UserID: 4, UserName: "Dev", Excused: true, Missing: true, Late: true, GroupID: ptrInt(9)},
	}
}

func TestStatusPrecedence(t *testing.T) {
	tests := []struct {
		name                   string
		excused, missing, late bool
		want                   models.SubmissionStatus
	}{
		{"none", false, false, false, models.StatusNone},
		{"late", false, false, true, models.StatusLate},
		{"missing beats late", false, true, true, models.StatusMissing},
		{"excused beats all", true, true, true, models.StatusExcused},
		{"excused alone", true, false, false, models.StatusExcused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromFlags(tt.excused, tt.missing, tt.late))
		})
	}
}

func TestCreateInitialDraftsAreSynced(t *testing.T) {
	drafts := CreateInitialDrafts(sampleSubmissions())
	require.Len(t, drafts, 4)
	for id, d := range drafts {
		assert.True(t, d.Synced, "user %d", id)
		assert.False(t, d.Dirty(), "user %d", id)
		assert.Empty(t, d.Comment)
	}

	assert.Equal(t, 92.0, *drafts[1].Grade)
	assert.Nil(t, drafts[2].Grade)
	assert.Equal(t, models.StatusLate, drafts[2].Status)
	assert.Equal(t, models.StatusMissing, drafts[3].Status)
	assert.Equal(t, models.StatusExcused, drafts[4].BaseStatus)
	assert.Equal(t, map[string]string{"c1": "solid"}, drafts[2].RubricComments)
	assert.Equal(t, map[string]string{}, drafts[1].RubricComments)
}

func TestSetGradeRejectsNonNumeric(t *testing.T) {
	store := NewStore(sampleSubmissions())
	before, _ := store.Draft(1)

	for _, raw := range []string{"abc", "9o", "NaN", "inf", "1,5"} {
		assert.False(t, store.SetGrade(1, raw), raw)
		after, _ := store.Draft(1)
		assert.Equal(t, before, after, raw)
	}
}

func TestSetGradeDirtinessFollowsValues(t *testing.T) {
	store := NewStore(sampleSubmissions())

	require.True(t, store.SetGrade(1, "85"))
	d, _ := store.Draft(1)
	assert.True(t, d.GradeDirty)
	assert.False(t, d.Synced)

	require.True(t, store.SetGrade(1, "85"))
	d, _ = store.Draft(1)
	assert.True(t, d.GradeDirty, "repeating an edit does not flip the flag")

	require.True(t, store.SetGrade(1, " 92 "))
	d, _ = store.Draft(1)
	assert.False(t, d.GradeDirty, "returning to the base value clears the flag")
	assert.True(t, d.Synced)
}

func TestSetGradeEmptyClearsGrade(t *testing.T) {
	store := NewStore(sampleSubmissions())
	assert.Equal(t, 1, store.Stats().Graded)

	require.True(t, store.SetGrade(1, ""))
	d, _ := store.Draft(1)
	assert.Nil(t, d.Grade)
	assert.True(t, d.GradeDirty)
	assert.Equal(t, 0, store.Stats().Graded)
	assert.Equal(t, 1, store.Stats().Dirty)
}

func TestEditsOnUnknownStudentAreNoops(t *testing.T) {
	store := NewStore(sampleSubmissions())
	before := store.Drafts()

	assert.False(t, store.SetGrade(99, "10"))
	assert.False(t, store.SetComment(99, "hi"))
	assert.False(t, store.SetStatus(99, models.StatusLate))
	assert.False(t, store.SetRubricComment(99, "c1", "x"))
	assert.False(t, store.ClearOne(99))
	assert.Equal(t, 0, store.CopyToGroup(99, FieldGrade, "1"))
	assert.Equal(t, before, store.Drafts())
}

func TestSetCommentAndStatus(t *testing.T) {
	store := NewStore(sampleSubmissions())

	require.True(t, store.SetComment(2, "Nice work"))
	require.True(t, store.SetStatus(2, models.StatusNone))
	assert.False(t, store.SetStatus(2, models.SubmissionStatus("graded")))

	d, _ := store.Draft(2)
	assert.True(t, d.CommentDirty)
	assert.True(t, d.StatusDirty)
	assert.Equal(t, models.StatusNone, d.Status)

	require.True(t, store.SetComment(2, ""))
	require.True(t, store.SetStatus(2, models.StatusLate))
	d, _ = store.Draft(2)
	assert.False(t, d.Dirty())
}

func TestSetRubricCommentMarksDirtyOnAnyTouch(t *testing.T) {
	store := NewStore(sampleSubmissions())

	require.True(t, store.SetRubricComment(2, "c1", "solid"))
	d, _ := store.Draft(2)
	assert.True(t, d.RubricCommentsDirty, "touching with the same text still stages it")
	assert.False(t, d.Synced)

	require.True(t, store.SetRubricComment(2, "c2", "needs citations"))
	d, _ = store.Draft(2)
	assert.Equal(t, map[string]string{"c1": "solid", "c2": "needs citations"}, d.RubricComments)
}

func TestSetRubricCommentRejectsBracketedIDs(t *testing.T) {
	store := NewStore(sampleSubmissions())

	assert.False(t, store.SetRubricComment(2, "c1][points", "10"))
	assert.False(t, store.SetRubricComment(2, "", "x"))
	d, _ := store.Draft(2)
	assert.False(t, d.RubricCommentsDirty)
	assert.True(t, ValidCriterionID("_6553"))
}

func TestCopyToGroup(t *testing.T) {
	store := NewStore(sampleSubmissions())

	assert.Equal(t, 1, store.CopyToGroup(1, FieldGrade, "88"))

	source, _ := store.Draft(1)
	assert.Equal(t, 92.0, *source.Grade)
	assert.False(t, source.GradeDirty)

	member, _ := store.Draft(2)
	require.NotNil(t, member.Grade)
	assert.Equal(t, 88.0, *member.Grade)
	assert.True(t, member.GradeDirty)

	other, _ := store.Draft(3)
	assert.False(t, other.Dirty())

	assert.Equal(t, 1, store.CopyToGroup(2, FieldComment, "Group feedback"))
	first, _ := store.Draft(1)
	assert.Equal(t, "Group feedback", first.Comment)
	assert.True(t, first.CommentDirty)
}

func TestCopyToGroupNoops(t *testing.T) {
	store := NewStore(sampleSubmissions())
	assert.Equal(t, 0, store.CopyToGroup(3, FieldGrade, "50"), "no group")
	assert.Equal(t, 0, store.CopyToGroup(4, FieldGrade, "50"), "alone in group")
	assert.Equal(t, 0, store.CopyToGroup(1, FieldGrade, "fifty"), "invalid grade")
	assert.Equal(t, 0, store.CopyToGroup(1, GroupField("status"), "late"), "unsupported field")
	assert.Equal(t, 0, store.Stats().Dirty)
}

func TestClearOneRestoresBase(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(2, "70")
	store.SetComment(2, "Redo section 2")
	store.SetStatus(2, models.StatusExcused)
	store.SetRubricComment(2, "c1", "weak")
	store.SetGrade(1, "10")

	require.True(t, store.ClearOne(2))
	d, _ := store.Draft(2)
	assert.Equal(t, d.BaseGrade, d.Grade)
	assert.Equal(t, d.BaseComment, d.Comment)
	assert.Equal(t, d.BaseStatus, d.Status)
	assert.Equal(t, d.BaseRubricComments, d.RubricComments)
	assert.False(t, d.Dirty())
	assert.True(t, d.Synced)

	other, _ := store.Draft(1)
	assert.True(t, other.GradeDirty)

	store.ClearAll()
	assert.Equal(t, 0, store.Stats().Dirty)
}

func TestBuildUpdatesEmitsEveryDraft(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(2, "75")
	store.SetRubricComment(2, "c1", "revised")

	updates := store.Updates()
	require.Len(t, updates, 4)
	assert.Equal(t, []int64{1, 2, 3, 4}, []int64{updates[0].UserID, updates[1].UserID, updates[2].UserID, updates[3].UserID})

	changed := FilterChanged(updates)
	require.Len(t, changed, 1)
	assert.Equal(t, int64(2), changed[0].UserID)
	assert.True(t, changed[0].GradeChanged)
	assert.Equal(t, 75.0, *changed[0].Grade)
	assert.False(t, changed[0].CommentChanged)
	assert.True(t, changed[0].RubricCommentsChanged)
	assert.Equal(t, "revised", changed[0].RubricComments["c1"])
	assert.Equal(t, "r1", changed[0].RubricAssessment["c1"].RatingID)

	store.ClearAll()
	assert.Empty(t, FilterChanged(store.Updates()), "nothing to sync")
	assert.Empty(t, NewStore(nil).Updates(), "no drafts")
}

func TestReconcileRoundTrip(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(1, "80")
	store.SetComment(1, "Good")
	store.SetStatus(1, models.StatusLate)
	store.SetRubricComment(1, "c9", "ok")

	var results []models.SyncResult
	for _, u := range FilterChanged(store.Updates()) {
		results = append(results, models.SyncResult{UserID: u.UserID, Success: true})
	}
	assert.Equal(t, 1, store.Reconcile(results, DefaultReconcilePolicy()))

	d, _ := store.Draft(1)
	assert.False(t, d.GradeDirty)
	assert.False(t, d.CommentDirty)
	assert.False(t, d.StatusDirty)
	assert.False(t, d.RubricCommentsDirty)
	assert.True(t, d.Synced)
	assert.Equal(t, 80.0, *d.BaseGrade)
	assert.Equal(t, "Good", d.BaseComment)
	assert.Equal(t, models.StatusLate, d.BaseStatus)
	assert.Equal(t, "ok", d.BaseRubricComments["c9"])
}

func TestReconcileWithoutStatusAdvanceKeepsStatusStaged(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(1, "80")
	store.SetStatus(1, models.StatusMissing)
	store.SetRubricComment(1, "c1", "x")

	store.Reconcile([]models.SyncResult{{UserID: 1, Success: true}}, ReconcilePolicy{})

	d, _ := store.Draft(1)
	assert.False(t, d.GradeDirty)
	assert.True(t, d.StatusDirty)
	assert.Equal(t, models.StatusNone, d.BaseStatus)
	assert.True(t, d.RubricCommentsDirty)
	assert.False(t, d.Synced)
}

func TestReconcilePartialFailure(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(1, "81")
	store.SetGrade(2, "82")
	store.SetComment(2, "late again")
	store.SetGrade(3, "83")
	before, _ := store.Draft(2)

	results := []models.SyncResult{
		{UserID: 1, Success: true},
		{UserID: 2, Success: false, Error: "failed to sync submission"},
		{UserID: 3, Success: true},
	}
	assert.Equal(t, 2, store.Reconcile(results, DefaultReconcilePolicy()))

	d1, _ := store.Draft(1)
	d3, _ := store.Draft(3)
	assert.False(t, d1.Dirty())
	assert.False(t, d3.Dirty())

	after, _ := store.Draft(2)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, store.Stats().Dirty)
}

func TestStats(t *testing.T) {
	store := NewStore(sampleSubmissions())
	assert.Equal(t, models.DraftStats{Total: 4, WithSubmission: 2, Graded: 1, Dirty: 0}, store.Stats())

	store.SetGrade(3, "40")
	store.SetComment(4, "excused per note")
	assert.Equal(t, models.DraftStats{Total: 4, WithSubmission: 2, Graded: 2, Dirty: 2}, store.Stats())
}

func TestSnapshotAndRestore(t *testing.T) {
	store := NewStore(sampleSubmissions())
	store.SetGrade(2, "64")
	store.SetComment(2, "see rubric")
	store.SetRubricComment(2, "c1", "thin")

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)

	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"2":`)

	var saved map[int64]models.DraftState
	require.NoError(t, json.Unmarshal(raw, &saved))
	saved[42] = models.DraftState{Grade: ptrFloat(10), GradeDirty: true}
	saved[3] = models.DraftState{Grade: ptrFloat(10)}

	fresh := NewStore(sampleSubmissions())
	assert.Equal(t, 1, fresh.Restore(saved))

	d, _ := fresh.Draft(2)
	assert.Equal(t, 64.0, *d.Grade)
	assert.Equal(t, "see rubric", d.Comment)
	assert.Equal(t, "thin", d.RubricComments["c1"])
	assert.True(t, d.GradeDirty)
	assert.True(t, d.CommentDirty)
	assert.True(t, d.RubricCommentsDirty)

	clean, _ := fresh.Draft(3)
	assert.Nil(t, clean.Grade, "entries without dirty flags are ignored")
	_, exists := fresh.Draft(42)
	assert.False(t, exists, "absent students are discarded")
}

func TestRestoreRecomputesAgainstFreshBase(t *testing.T) {
	store := NewStore(sampleSubmissions())
	saved := map[int64]models.DraftState{
		1: {Grade: ptrFloat(70), BaseGrade: ptrFloat(92), GradeDirty: true},
	}

	reloaded := sampleSubmissions()
	reloaded[0].Score = ptrFloat(70)
	fresh := NewStore(reloaded)
	assert.Equal(t, 1, fresh.Restore(saved))

	d, _ := fresh.Draft(1)
	assert.False(t, d.GradeDirty, "the remote already holds the saved grade")
	assert.Empty(t, store.Snapshot())
}

func TestDraftsReturnsCopies(t *testing.T) {
	store := NewStore(sampleSubmissions())
	drafts := store.Drafts()
	d := drafts[2]
	d.RubricComments["c1"] = "mutated"

	again, _ := store.Draft(2)
	assert.Equal(t, "solid", again.RubricComments["c1"])
}
