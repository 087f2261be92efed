package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/repository"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

const maxClientStateSize = 4 << 20

// ClientStateRepository persists raw state blobs by key.
type ClientStateRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

var clientStateDefaults = map[models.ClientStateKey]json.RawMessage{
	models.StateAutosave:      json.RawMessage(`{}`),
	models.StateHistory:       json.RawMessage(`[]`),
	models.StateUIPreferences: json.RawMessage(`{}`),
	models.StateDarkMode:      json.RawMessage(`false`),
	models.StateLastSession:   json.RawMessage(`null`),
}

// ClientStateService stores small frontend state blobs under a fixed set of keys.
type ClientStateService struct {
	repo   ClientStateRepository
	logger *zap.Logger
}

// NewClientStateService constructs the service.
func NewClientStateService(repo ClientStateRepository, logger *zap.Logger) *ClientStateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientStateService{repo: repo, logger: logger}
}

// ParseClientStateKey validates a key taken from a request path.
func ParseClientStateKey(raw string) (models.ClientStateKey, error) {
	key := models.ClientStateKey(raw)
	if _, ok := clientStateDefaults[key]; !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "unknown state key")
	}
	return key, nil
}

// Get returns the stored blob, or the key's default when it is missing or corrupt.
func (s *ClientStateService) Get(ctx context.Context, key models.ClientStateKey) (json.RawMessage, error) {
	fallback, ok := clientStateDefaults[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown state key")
	}
	raw, err := s.repo.Get(ctx, string(key))
	if err != nil {
		if !errors.Is(err, repository.ErrStateNotFound) {
			s.logger.Warn("client state unreadable, using default", zap.String("key", string(key)), zap.Error(err))
		}
		return fallback, nil
	}
	if !json.Valid(raw) {
		s.logger.Warn("client state corrupt, using default", zap.String("key", string(key)))
		return fallback, nil
	}
	return json.RawMessage(raw), nil
}

// Put replaces the blob for key. The value must be valid JSON.
func (s *ClientStateService) Put(ctx context.Context, key models.ClientStateKey, value []byte) error {
	if _, ok := clientStateDefaults[key]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown state key")
	}
	value = bytes.TrimSpace(value)
	if len(value) == 0 || !json.Valid(value) {
		return appErrors.Clone(appErrors.ErrValidation, "state must be valid JSON")
	}
	if len(value) > maxClientStateSize {
		return appErrors.Clone(appErrors.ErrValidation, "state too large")
	}
	if err := s.repo.Put(ctx, string(key), value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save state")
	}
	return nil
}

// Load decodes the blob for key into dest. Missing or undecodable blobs leave dest untouched.
func (s *ClientStateService) Load(ctx context.Context, key models.ClientStateKey, dest interface{}) bool {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("client state has unexpected shape", zap.String("key", string(key)), zap.Error(err))
		return false
	}
	return true
}

// Save encodes value into the blob for key.
func (s *ClientStateService) Save(ctx context.Context, key models.ClientStateKey, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode state")
	}
	return s.Put(ctx, key, payload)
}
