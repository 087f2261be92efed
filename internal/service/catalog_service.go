package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/remote"
	"github.com/noah-isme/grading-assistant/pkg/cache"
)

type connectionProvider interface {
	RequireRemote(ctx context.Context) (models.ConnectionSettings, error)
	RequireAssignment(ctx context.Context) (models.ConnectionSettings, error)
}

// CatalogService proxies read calls and raw sync requests to the remote gradebook.
type CatalogService struct {
	connections connectionProvider
	factory     RemoteFactory
	gateway     *SyncGateway
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(connections connectionProvider, factory RemoteFactory, gateway *SyncGateway, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		connections: connections,
		factory:     factory,
		gateway:     gateway,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (s *CatalogService) client(ctx context.Context, withAssignment bool) (models.ConnectionSettings, RemoteClient, error) {
	var (
		settings models.ConnectionSettings
		err      error
	)
	if withAssignment {
		settings, err = s.connections.RequireAssignment(ctx)
	} else {
		settings, err = s.connections.RequireRemote(ctx)
	}
	if err != nil {
		return settings, nil, err
	}
	client, err := s.factory(settings)
	if err != nil {
		return settings, nil, remoteFailure(s.logger, "build_client", err)
	}
	return settings, client, nil
}

// Assignments lists course assignments with counts. The bool reports a cache hit.
func (s *CatalogService) Assignments(ctx context.Context) ([]models.AssignmentSummary, bool, error) {
	settings, client, err := s.client(ctx, false)
	if err != nil {
		return nil, false, err
	}

	key := cache.Key("assignments", settings.CourseID)
	var cached []models.AssignmentSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	assignments, err := client.ListAssignments(ctx)
	if err != nil {
		return nil, false, remoteFailure(s.logger, "list_assignments", err)
	}
	_ = s.cache.Set(ctx, key, assignments, s.cacheTTL)
	return assignments, false, nil
}

// AssignmentDetails returns the configured assignment with its rubric.
func (s *CatalogService) AssignmentDetails(ctx context.Context) (*models.AssignmentDetails, error) {
	_, client, err := s.client(ctx, true)
	if err != nil {
		return nil, err
	}
	details, err := client.GetAssignment(ctx)
	if err != nil {
		return nil, remoteFailure(s.logger, "get_assignment", err)
	}
	return details, nil
}

// Submissions returns normalized submissions of the configured assignment.
func (s *CatalogService) Submissions(ctx context.Context) ([]models.SubmissionRecord, error) {
	_, client, err := s.client(ctx, true)
	if err != nil {
		return nil, err
	}
	submissions, err := client.ListSubmissions(ctx)
	if err != nil {
		return nil, remoteFailure(s.logger, "list_submissions", err)
	}
	return submissions, nil
}

// Attachment opens a student's attached file. Callers must close the stream body.
func (s *CatalogService) Attachment(ctx context.Context, userID, fileID int64) (*remote.AttachmentStream, error) {
	_, client, err := s.client(ctx, true)
	if err != nil {
		return nil, err
	}
	stream, err := client.OpenAttachment(ctx, userID, fileID)
	if err != nil {
		return nil, remoteFailure(s.logger, "open_attachment", err)
	}
	return stream, nil
}

// Sync pushes caller-built updates as they are.
func (s *CatalogService) Sync(ctx context.Context, updates []models.SubmissionUpdate) ([]models.SyncResult, error) {
	settings, client, err := s.client(ctx, true)
	if err != nil {
		return nil, err
	}
	target := SyncTarget{CourseID: settings.CourseID, AssignmentID: settings.AssignmentID}
	return s.gateway.Push(ctx, client, target, updates)
}
