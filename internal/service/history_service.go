package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/pkg/jobs"
)

const historyJobType = "history.record"

type historyRepository interface {
	InsertBatch(ctx context.Context, entries []models.HistoryEntry) error
	List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)
}

// HistoryConfig tunes the history worker pool.
type HistoryConfig struct {
	Workers int
	Retries int
}

// HistoryService records sync outcomes asynchronously. A nil repository disables it.
type HistoryService struct {
	repo   historyRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewHistoryService wires the repository behind a job queue.
func NewHistoryService(repo historyRepository, cfg HistoryConfig, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &HistoryService{repo: repo, logger: logger}
	if repo != nil {
		svc.queue = jobs.NewQueue("history", svc.handle, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: cfg.Retries,
			Logger:     logger,
		})
	}
	return svc
}

// Enabled reports whether history is persisted.
func (s *HistoryService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Start launches the workers.
func (s *HistoryService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop drains pending entries and stops the workers.
func (s *HistoryService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// Record enqueues entries for insertion. It never blocks the caller on the database.
func (s *HistoryService) Record(ctx context.Context, entries []models.HistoryEntry) {
	if !s.Enabled() || len(entries) == 0 {
		return
	}
	batch := make([]models.HistoryEntry, len(entries))
	copy(batch, entries)
	job := jobs.Job{ID: uuid.NewString(), Type: historyJobType, Payload: batch}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("history entries dropped", zap.Int("count", len(entries)), zap.Error(err))
	}
}

// List returns recorded entries newest first.
func (s *HistoryService) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	if !s.Enabled() {
		return []models.HistoryEntry{}, nil
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (s *HistoryService) handle(ctx context.Context, job jobs.Job) error {
	entries, ok := job.Payload.([]models.HistoryEntry)
	if !ok {
		s.logger.Error("unexpected history payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.InsertBatch(ctx, entries)
}
