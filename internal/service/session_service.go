package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/drafts"
	"github.com/noah-isme/grading-assistant/internal/models"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

type clientStateStore interface {
	Load(ctx context.Context, key models.ClientStateKey, dest interface{}) bool
	Save(ctx context.Context, key models.ClientStateKey, value interface{}) error
}

// autosaveSnapshot is the persisted shape of the autosave client state key.
type autosaveSnapshot struct {
	CourseID     string                      `json:"courseId"`
	AssignmentID string                      `json:"assignmentId"`
	SavedAt      time.Time                   `json:"savedAt"`
	Drafts       map[int64]models.DraftState `json:"drafts"`
}

// SessionDeps groups the collaborators of a SessionService.
type SessionDeps struct {
	Connections connectionProvider
	Factory     RemoteFactory
	Gateway     *SyncGateway
	State       clientStateStore
	Metrics     *MetricsService
	Exporter    *ExportService
	Policy      drafts.ReconcilePolicy
	Logger      *zap.Logger
}

// SessionService owns the single grading session of this process: the loaded submission
// set and the drafts staged against it. Load and Flush are mutually exclusive, and edits
// are rejected while either runs.
type SessionService struct {
	connections connectionProvider
	factory     RemoteFactory
	gateway     *SyncGateway
	state       clientStateStore
	metrics     *MetricsService
	exporter    *ExportService
	policy      drafts.ReconcilePolicy
	logger      *zap.Logger
	now         func() time.Time

	busy atomic.Bool

	mu           sync.RWMutex
	store        *drafts.Store
	courseID     string
	assignmentID string
	loadedAt     *time.Time
	restored     int
	revision     uint64
	savedRev     uint64
}

// NewSessionService constructs an empty session.
func NewSessionService(deps SessionDeps) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exporter := deps.Exporter
	if exporter == nil {
		exporter = NewExportService(nil, nil)
	}
	return &SessionService{
		connections: deps.Connections,
		factory:     deps.Factory,
		gateway:     deps.Gateway,
		state:       deps.State,
		metrics:     deps.Metrics,
		exporter:    exporter,
		policy:      deps.Policy,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SessionService) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return appErrors.ErrBusy
	}
	return nil
}

func (s *SessionService) release() {
	s.busy.Store(false)
}

// Load fetches the configured assignment's submissions, builds fresh drafts and replays a
// matching autosave snapshot. On failure the previous session is left untouched.
func (s *SessionService) Load(ctx context.Context) (models.SessionState, error) {
	if err := s.acquire(); err != nil {
		return models.SessionState{}, err
	}
	defer s.release()

	settings, err := s.connections.RequireAssignment(ctx)
	if err != nil {
		return models.SessionState{}, err
	}
	client, err := s.factory(settings)
	if err != nil {
		return models.SessionState{}, remoteFailure(s.logger, "build_client", err)
	}
	submissions, err := client.ListSubmissions(ctx)
	if err != nil {
		return models.SessionState{}, remoteFailure(s.logger, "list_submissions", err)
	}

	store := drafts.NewStore(submissions)
	restored := 0
	var saved autosaveSnapshot
	if s.state != nil && s.state.Load(ctx, models.StateAutosave, &saved) &&
		saved.CourseID == settings.CourseID && saved.AssignmentID == settings.AssignmentID {
		restored = store.Restore(saved.Drafts)
	}

	loadedAt := s.now().UTC()
	s.mu.Lock()
	s.store = store
	s.courseID = settings.CourseID
	s.assignmentID = settings.AssignmentID
	s.loadedAt = &loadedAt
	s.restored = restored
	s.revision++
	state := s.stateLocked()
	s.mu.Unlock()

	s.metrics.SetDirtyDrafts(state.Stats.Dirty)
	s.rememberSession(ctx, settings.CourseID, settings.AssignmentID, 0, "")
	s.logger.Info("grading session loaded",
		zap.String("course_id", settings.CourseID),
		zap.String("assignment_id", settings.AssignmentID),
		zap.Int("submissions", len(submissions)),
		zap.Int("restored", restored),
	)
	return state, nil
}

// State returns the loaded submissions, their drafts and stats.
func (s *SessionService) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Stats returns the aggregate counters of the session.
func (s *SessionService) Stats() models.DraftStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return models.DraftStats{}
	}
	return s.store.Stats()
}

func (s *SessionService) stateLocked() models.SessionState {
	state := models.SessionState{
		CourseID:     s.courseID,
		AssignmentID: s.assignmentID,
		LoadedAt:     s.loadedAt,
		Submissions:  []models.SubmissionRecord{},
		Drafts:       map[int64]models.DraftState{},
		Restored:     s.restored,
	}
	if s.store != nil {
		state.Submissions = s.store.Submissions()
		state.Drafts = s.store.Drafts()
		state.Stats = s.store.Stats()
	}
	return state
}

// edit applies fn to the store under the write lock. Edits for unknown students, or
// rejected by the engine, return the unchanged state.
func (s *SessionService) edit(ctx context.Context, userID int64, field string, fn func(*drafts.Store) bool) (models.SessionState, error) {
	s.mu.Lock()
	if s.busy.Load() {
		s.mu.Unlock()
		return models.SessionState{}, appErrors.ErrBusy
	}
	changed := false
	if s.store != nil {
		changed = fn(s.store)
	}
	if changed {
		s.revision++
	}
	state := s.stateLocked()
	courseID, assignmentID := s.courseID, s.assignmentID
	s.mu.Unlock()

	if changed {
		s.metrics.SetDirtyDrafts(state.Stats.Dirty)
		s.rememberSession(ctx, courseID, assignmentID, userID, field)
	}
	return state, nil
}

// SetGrade stages a grade typed by the grader. Non-numeric input is ignored.
func (s *SessionService) SetGrade(ctx context.Context, userID int64, raw string) (models.SessionState, error) {
	return s.edit(ctx, userID, "grade", func(store *drafts.Store) bool { return store.SetGrade(userID, raw) })
}

// SetComment stages the free-text comment.
func (s *SessionService) SetComment(ctx context.Context, userID int64, text string) (models.SessionState, error) {
	return s.edit(ctx, userID, "comment", func(store *drafts.Store) bool { return store.SetComment(userID, text) })
}

// SetStatus stages a submission status. Unknown statuses are ignored.
func (s *SessionService) SetStatus(ctx context.Context, userID int64, status models.SubmissionStatus) (models.SessionState, error) {
	return s.edit(ctx, userID, "status", func(store *drafts.Store) bool { return store.SetStatus(userID, status) })
}

// SetRubricComment stages the comment of one rubric criterion.
func (s *SessionService) SetRubricComment(ctx context.Context, userID int64, criterionID, text string) (models.SessionState, error) {
	if !drafts.ValidCriterionID(criterionID) {
		return models.SessionState{}, appErrors.Clone(appErrors.ErrValidation, "invalid rubric criterion id")
	}
	return s.edit(ctx, userID, "rubric", func(store *drafts.Store) bool { return store.SetRubricComment(userID, criterionID, text) })
}

// CopyToGroup stages value on every other member of the student's group.
func (s *SessionService) CopyToGroup(ctx context.Context, userID int64, field drafts.GroupField, value string) (models.SessionState, int, error) {
	copied := 0
	state, err := s.edit(ctx, userID, string(field), func(store *drafts.Store) bool {
		copied = store.CopyToGroup(userID, field, value)
		return copied > 0
	})
	return state, copied, err
}

// ClearAll discards every staged edit.
func (s *SessionService) ClearAll(ctx context.Context) (models.SessionState, error) {
	return s.edit(ctx, 0, "", func(store *drafts.Store) bool {
		store.ClearAll()
		return true
	})
}

// ClearOne discards the staged edits of one student.
func (s *SessionService) ClearOne(ctx context.Context, userID int64) (models.SessionState, error) {
	return s.edit(ctx, userID, "", func(store *drafts.Store) bool { return store.ClearOne(userID) })
}

// Flush pushes every dirty draft and reconciles the successful ones. Failed students stay
// staged; nothing is retried automatically.
func (s *SessionService) Flush(ctx context.Context) (models.SyncSummary, error) {
	if err := s.acquire(); err != nil {
		return models.SyncSummary{}, err
	}
	defer s.release()

	s.mu.RLock()
	if s.store == nil {
		s.mu.RUnlock()
		return models.SyncSummary{}, appErrors.Clone(appErrors.ErrValidation, "no grading session loaded")
	}
	updates := drafts.FilterChanged(s.store.Updates())
	courseID, assignmentID := s.courseID, s.assignmentID
	stats := s.store.Stats()
	s.mu.RUnlock()

	if len(updates) == 0 {
		return models.SyncSummary{Results: []models.SyncResult{}, Message: "nothing to sync", Stats: stats}, nil
	}

	settings, err := s.connections.RequireAssignment(ctx)
	if err != nil {
		return models.SyncSummary{}, err
	}
	if settings.CourseID != courseID || settings.AssignmentID != assignmentID {
		return models.SyncSummary{}, appErrors.Clone(appErrors.ErrValidation, "connection settings changed since the session was loaded; reload first")
	}
	client, err := s.factory(settings)
	if err != nil {
		return models.SyncSummary{}, remoteFailure(s.logger, "build_client", err)
	}

	target := SyncTarget{BatchID: uuid.NewString(), CourseID: courseID, AssignmentID: assignmentID}
	results, err := s.gateway.Push(ctx, client, target, updates)
	if err != nil {
		return models.SyncSummary{}, err
	}

	s.mu.Lock()
	s.store.Reconcile(results, s.policy)
	s.revision++
	stats = s.store.Stats()
	s.mu.Unlock()
	s.metrics.SetDirtyDrafts(stats.Dirty)

	summary := models.SyncSummary{BatchID: target.BatchID, Results: results, Stats: stats}
	for _, r := range results {
		if r.Success {
			summary.Synced++
		} else {
			summary.Failed++
		}
	}
	summary.Message = fmt.Sprintf("%d synced, %d failed", summary.Synced, summary.Failed)

	if err := s.Autosave(ctx); err != nil {
		s.logger.Warn("autosave after flush failed", zap.Error(err))
	}
	s.logger.Info("grading session flushed",
		zap.String("batch_id", target.BatchID),
		zap.Int("synced", summary.Synced),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Autosave persists the dirty drafts when they changed since the last save.
func (s *SessionService) Autosave(ctx context.Context) error {
	if s.state == nil {
		return nil
	}
	s.mu.RLock()
	if s.store == nil || s.revision == s.savedRev {
		s.mu.RUnlock()
		return nil
	}
	snapshot := autosaveSnapshot{
		CourseID:     s.courseID,
		AssignmentID: s.assignmentID,
		SavedAt:      s.now().UTC(),
		Drafts:       s.store.Snapshot(),
	}
	revision := s.revision
	s.mu.RUnlock()

	if err := s.state.Save(ctx, models.StateAutosave, snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	if revision > s.savedRev {
		s.savedRev = revision
	}
	s.mu.Unlock()
	return nil
}

// RunAutosave saves on every tick until ctx is done, then saves once more.
func (s *SessionService) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Autosave(final); err != nil {
				s.logger.Warn("final autosave failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.Autosave(ctx); err != nil {
				s.logger.Warn("autosave failed", zap.Error(err))
			}
		}
	}
}

// Export renders the grading sheet of the session.
func (s *SessionService) Export(format ExportFormat) (*ExportedFile, error) {
	state := s.State()
	if state.LoadedAt == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no grading session loaded")
	}
	return s.exporter.GradingSheet(state, format)
}

func (s *SessionService) rememberSession(ctx context.Context, courseID, assignmentID string, userID int64, field string) {
	if s.state == nil {
		return
	}
	pointer := models.LastSession{
		CourseID:     courseID,
		AssignmentID: assignmentID,
		UserID:       userID,
		Field:        field,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.state.Save(ctx, models.StateLastSession, pointer); err != nil {
		s.logger.Debug("last session not recorded", zap.Error(err))
	}
}
