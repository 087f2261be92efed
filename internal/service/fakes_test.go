package service

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/remote"
	"github.com/noah-isme/grading-assistant/internal/repository"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

type sentUpdate struct {
	UserID int64
	Form   url.Values
}

type fakeRemote struct {
	mu          sync.Mutex
	submissions []models.SubmissionRecord
	listErr     error
	assignments []models.AssignmentSummary
	details     *models.AssignmentDetails
	failFor     map[int64]error
	sent        []sentUpdate
	listCalls   int

	// When set, ListSubmissions signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeRemote) ListAssignments(ctx context.Context) ([]models.AssignmentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.assignments, f.listErr
}

func (f *fakeRemote) GetAssignment(ctx context.Context) (*models.AssignmentDetails, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.details, nil
}

func (f *fakeRemote) ListSubmissions(ctx context.Context) ([]models.SubmissionRecord, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.SubmissionRecord, len(f.submissions))
	copy(out, f.submissions)
	return out, nil
}

func (f *fakeRemote) OpenAttachment(ctx context.Context, userID, fileID int64) (*remote.AttachmentStream, error) {
	if fileID != 7 {
		return nil, remote.ErrAttachmentNotFound
	}
	return &remote.AttachmentStream{Body: io.NopCloser(strings.NewReader("body")), Name: "essay.txt", ContentType: "text/plain"}, nil
}

func (f *fakeRemote) UpdateSubmission(ctx context.Context, userID int64, form url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentUpdate{UserID: userID, Form: form})
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	return nil
}

func (f *fakeRemote) factory() RemoteFactory {
	return func(models.ConnectionSettings) (RemoteClient, error) { return f, nil }
}

type fakeConnections struct {
	mu       sync.Mutex
	settings models.ConnectionSettings
}

func newFakeConnections() *fakeConnections {
	return &fakeConnections{settings: models.ConnectionSettings{
		BaseURL:      "https://school.example",
		CourseID:     "1",
		AssignmentID: "2",
		AccessToken:  "tok",
	}}
}

func (f *fakeConnections) RequireRemote(ctx context.Context) (models.ConnectionSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings.AccessToken == "" {
		return f.settings, appErrors.Clone(appErrors.ErrMissingConfiguration, "missing connection settings: accessToken")
	}
	return f.settings, nil
}

func (f *fakeConnections) RequireAssignment(ctx context.Context) (models.ConnectionSettings, error) {
	settings, err := f.RequireRemote(ctx)
	if err != nil {
		return settings, err
	}
	if settings.AssignmentID == "" {
		return settings, appErrors.Clone(appErrors.ErrMissingConfiguration, "missing connection settings: assignmentId")
	}
	return settings, nil
}

type memoryState struct {
	mu     sync.Mutex
	blobs  map[models.ClientStateKey][]byte
	writes map[models.ClientStateKey]int
}

func newMemoryState() *memoryState {
	return &memoryState{blobs: map[models.ClientStateKey][]byte{}, writes: map[models.ClientStateKey]int{}}
}

func (m *memoryState) Load(ctx context.Context, key models.ClientStateKey, dest interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.blobs[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memoryState) Save(ctx context.Context, key models.ClientStateKey, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = raw
	m.writes[key]++
	return nil
}

func (m *memoryState) writeCount(key models.ClientStateKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

type memoryRepo struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memoryRepo) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.blobs[key]
	if !ok {
		return nil, repository.ErrStateNotFound
	}
	return raw, nil
}

func (m *memoryRepo) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blobs == nil {
		m.blobs = map[string][]byte{}
	}
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

type recordingHistory struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
}

func (r *recordingHistory) Record(ctx context.Context, entries []models.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func floatPtr(v float64) *float64 {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func sampleSubmissions() []models.SubmissionRecord {
	return []models.SubmissionRecord{
		{UserID: 11, UserName: "Amy Alpha", GroupID: int64Ptr(5), GroupName: "Team A", HasSubmission: true, Score: floatPtr(7)},
		{UserID: 12, UserName: "Bo Beta", GroupID: int64Ptr(5), GroupName: "Team A", HasSubmission: true, Late: true},
		{UserID: 13, UserName: "Cy Gamma", HasSubmission: false, Missing: true},
	}
}
