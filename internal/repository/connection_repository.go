package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/pkg/storage"
)

const connectionFile = "connection.json"

// ConnectionRepository persists the remote connection settings as one JSON document.
type ConnectionRepository struct {
	store  *storage.LocalStorage
	logger *zap.Logger
	mu     sync.Mutex
}

// NewConnectionRepository constructs the repository.
func NewConnectionRepository(store *storage.LocalStorage, logger *zap.Logger) *ConnectionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionRepository{store: store, logger: logger}
}

// Load returns the stored settings. A missing or unreadable document yields empty settings.
func (r *ConnectionRepository) Load(ctx context.Context) (models.ConnectionSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var settings models.ConnectionSettings
	raw, err := r.store.Read(connectionFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("load connection settings: %w", err)
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		r.logger.Warn("connection settings unreadable, starting empty", zap.Error(err))
		return models.ConnectionSettings{}, nil
	}
	return settings, nil
}

// Save replaces the stored settings.
func (r *ConnectionRepository) Save(ctx context.Context, settings models.ConnectionSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal connection settings: %w", err)
	}
	if err := r.store.Write(connectionFile, payload); err != nil {
		return fmt.Errorf("save connection settings: %w", err)
	}
	return nil
}
