package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/remote"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

type catalogServiceMock struct {
	hit      bool
	err      error
	received []models.SubmissionUpdate
	closed   bool
}

type trackingBody struct {
	io.Reader
	mock *catalogServiceMock
}

func (b trackingBody) Close() error {
	b.mock.closed = true
	return nil
}

func (m *catalogServiceMock) Assignments(ctx context.Context) ([]models.AssignmentSummary, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return []models.AssignmentSummary{{ID: 2, Name: "Essay"}}, m.hit, nil
}

func (m *catalogServiceMock) AssignmentDetails(ctx context.Context) (*models.AssignmentDetails, error) {
	return &models.AssignmentDetails{ID: 2, Name: "Essay"}, m.err
}

func (m *catalogServiceMock) Submissions(ctx context.Context) ([]models.SubmissionRecord, error) {
	return []models.SubmissionRecord{{UserID: 11, UserName: "Amy"}}, m.err
}

func (m *catalogServiceMock) Attachment(ctx context.Context, userID, fileID int64) (*remote.AttachmentStream, error) {
	if fileID != 7 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	return &remote.AttachmentStream{
		Body:          trackingBody{Reader: strings.NewReader("%PDF-1.4"), mock: m},
		Name:          "essay final.pdf",
		ContentType:   "application/pdf",
		ContentLength: 8,
	}, nil
}

func (m *catalogServiceMock) Sync(ctx context.Context, updates []models.SubmissionUpdate) ([]models.SyncResult, error) {
	m.received = updates
	results := make([]models.SyncResult, 0, len(updates))
	for _, u := range updates {
		results = append(results, models.SyncResult{UserID: u.UserID, Success: true})
	}
	return results, nil
}

func catalogRouter(mock *catalogServiceMock) http.Handler {
	r := newTestRouter()
	h := NewCatalogHandler(mock)
	r.GET("/api/assignments", h.Assignments)
	r.GET("/api/assignment-details", h.AssignmentDetails)
	r.GET("/api/submissions", h.Submissions)
	r.GET("/api/submissions/:userId/file/:fileId", h.Attachment)
	r.POST("/api/submissions/sync", h.Sync)
	return r
}

func TestCatalogHandlerAssignmentsReportsCacheHit(t *testing.T) {
	w := perform(catalogRouter(&catalogServiceMock{hit: true}), http.MethodGet, "/api/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestCatalogHandlerMapsErrors(t *testing.T) {
	missing := &catalogServiceMock{err: appErrors.Clone(appErrors.ErrMissingConfiguration, "missing connection settings: accessToken")}
	w := perform(catalogRouter(missing), http.MethodGet, "/api/assignments", nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, "MISSING_CONFIGURATION", decodeEnvelope(t, w).Error.Code)

	remoteErr := appErrors.Wrap(errors.New("401 Invalid access token"), appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, appErrors.ErrRemote.Message)
	w = perform(catalogRouter(&catalogServiceMock{err: remoteErr}), http.MethodGet, "/api/submissions", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "Invalid access token")
}

func TestCatalogHandlerStreamsAttachment(t *testing.T) {
	mock := &catalogServiceMock{}
	w := perform(catalogRouter(mock), http.MethodGet, "/api/submissions/11/file/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="essay final.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	assert.True(t, mock.closed)

	w = perform(catalogRouter(mock), http.MethodGet, "/api/submissions/11/file/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(catalogRouter(mock), http.MethodGet, "/api/submissions/abc/file/7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerSync(t *testing.T) {
	mock := &catalogServiceMock{}
	body := []byte(`[{"userId":11,"gradeChanged":true,"grade":8.5}]`)
	w := perform(catalogRouter(mock), http.MethodPost, "/api/submissions/sync", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mock.received, 1)
	assert.Equal(t, 8.5, *mock.received[0].Grade)

	w = perform(catalogRouter(mock), http.MethodPost, "/api/submissions/sync", []byte(`{"userId":11}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
