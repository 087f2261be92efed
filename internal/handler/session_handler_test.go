package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-assistant/internal/drafts"
	"github.com/noah-isme/grading-assistant/internal/dto"
	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/service"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

type editCall struct {
	op     string
	userID int64
	extra  string
	value  string
}

type sessionServiceMock struct {
	calls    []editCall
	flushErr error
	exported service.ExportFormat
}

func (m *sessionServiceMock) record(op string, userID int64, extra, value string) (models.SessionState, error) {
	m.calls = append(m.calls, editCall{op: op, userID: userID, extra: extra, value: value})
	return models.SessionState{CourseID: "1", AssignmentID: "2"}, nil
}

func (m *sessionServiceMock) Load(ctx context.Context) (models.SessionState, error) {
	return m.record("load", 0, "", "")
}

func (m *sessionServiceMock) State() models.SessionState {
	return models.SessionState{CourseID: "1"}
}

func (m *sessionServiceMock) Stats() models.DraftStats {
	return models.DraftStats{Total: 3, Dirty: 1}
}

func (m *sessionServiceMock) SetGrade(ctx context.Context, userID int64, raw string) (models.SessionState, error) {
	return m.record("grade", userID, "", raw)
}

func (m *sessionServiceMock) SetComment(ctx context.Context, userID int64, text string) (models.SessionState, error) {
	return m.record("comment", userID, "", text)
}

func (m *sessionServiceMock) SetStatus(ctx context.Context, userID int64, status models.SubmissionStatus) (models.SessionState, error) {
	return m.record("status", userID, "", string(status))
}

func (m *sessionServiceMock) SetRubricComment(ctx context.Context, userID int64, criterionID, text string) (models.SessionState, error) {
	return m.record("rubric", userID, criterionID, text)
}

func (m *sessionServiceMock) CopyToGroup(ctx context.Context, userID int64, field drafts.GroupField, value string) (models.SessionState, int, error) {
	state, err := m.record("copy", userID, string(field), value)
	return state, 2, err
}

func (m *sessionServiceMock) ClearAll(ctx context.Context) (models.SessionState, error) {
	return m.record("clear-all", 0, "", "")
}

func (m *sessionServiceMock) ClearOne(ctx context.Context, userID int64) (models.SessionState, error) {
	return m.record("clear", userID, "", "")
}

func (m *sessionServiceMock) Flush(ctx context.Context) (models.SyncSummary, error) {
	if m.flushErr != nil {
		return models.SyncSummary{}, m.flushErr
	}
	return models.SyncSummary{Synced: 1, Message: "1 synced, 0 failed"}, nil
}

func (m *sessionServiceMock) Export(format service.ExportFormat) (*service.ExportedFile, error) {
	m.exported = format
	return &service.ExportedFile{Filename: "grading_1_2.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Student\n")}, nil
}

func sessionRouter(mock *sessionServiceMock) http.Handler {
	r := newTestRouter()
	h := NewSessionHandler(mock)
	r.POST("/api/session/load", h.Load)
	r.GET("/api/session", h.State)
	r.GET("/api/session/stats", h.Stats)
	r.PUT("/api/session/drafts/:userId/grade", h.SetGrade)
	r.PUT("/api/session/drafts/:userId/comment", h.SetComment)
	r.PUT("/api/session/drafts/:userId/status", h.SetStatus)
	r.PUT("/api/session/drafts/:userId/rubric/:criterionId", h.SetRubricComment)
	r.POST("/api/session/drafts/:userId/copy-to-group", h.CopyToGroup)
	r.POST("/api/session/flush", h.Flush)
	r.DELETE("/api/session/drafts", h.ClearAll)
	r.DELETE("/api/session/drafts/:userId", h.ClearOne)
	r.GET("/api/session/export", h.Export)
	return r
}

func TestSessionHandlerEditsRouteToService(t *testing.T) {
	mock := &sessionServiceMock{}
	r := sessionRouter(mock)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPut, "/api/session/drafts/11/grade", []byte(`{"value":"8,5"}`)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPut, "/api/session/drafts/11/comment", []byte(`{"value":""}`)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPut, "/api/session/drafts/11/status", []byte(`{"value":"late"}`)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPut, "/api/session/drafts/11/rubric/_123", []byte(`{"value":"clear thesis"}`)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodDelete, "/api/session/drafts/11", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodDelete, "/api/session/drafts", nil).Code)

	assert.Equal(t, []editCall{
		{op: "grade", userID: 11, value: "8,5"},
		{op: "comment", userID: 11, value: ""},
		{op: "status", userID: 11, value: "late"},
		{op: "rubric", userID: 11, extra: "_123", value: "clear thesis"},
		{op: "clear", userID: 11},
		{op: "clear-all"},
	}, mock.calls)
}

func TestSessionHandlerRejectsMalformedEdits(t *testing.T) {
	mock := &sessionServiceMock{}
	r := sessionRouter(mock)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPut, "/api/session/drafts/11/grade", []byte(`{}`)).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPut, "/api/session/drafts/0/grade", []byte(`{"value":"1"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/api/session/drafts/11/copy-to-group", []byte(`{"field":"status","value":"late"}`)).Code)
	assert.Empty(t, mock.calls)
}

func TestSessionHandlerCopyToGroup(t *testing.T) {
	mock := &sessionServiceMock{}
	w := perform(sessionRouter(mock), http.MethodPost, "/api/session/drafts/11/copy-to-group", []byte(`{"field":"grade","value":"9"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var payload dto.CopyToGroupResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &payload))
	assert.Equal(t, 2, payload.Copied)
	assert.Equal(t, "1", payload.State.CourseID)
	assert.Equal(t, editCall{op: "copy", userID: 11, extra: "grade", value: "9"}, mock.calls[0])
}

func TestSessionHandlerFlushBusy(t *testing.T) {
	mock := &sessionServiceMock{flushErr: appErrors.ErrBusy}
	w := perform(sessionRouter(mock), http.MethodPost, "/api/session/flush", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "OPERATION_IN_PROGRESS", decodeEnvelope(t, w).Error.Code)
}

func TestSessionHandlerExport(t *testing.T) {
	mock := &sessionServiceMock{}
	r := sessionRouter(mock)

	w := perform(r, http.MethodGet, "/api/session/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, mock.exported)
	assert.Equal(t, `attachment; filename="grading_1_2.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Student\n", w.Body.String())

	w = perform(r, http.MethodGet, "/api/session/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
