package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/pkg/cache"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

type connectionRepository interface {
	Load(ctx context.Context) (models.ConnectionSettings, error)
	Save(ctx context.Context, settings models.ConnectionSettings) error
}

type connectionField struct {
	apply func(s *models.ConnectionSettings, raw json.RawMessage) error
	clear func(s *models.ConnectionSettings)
}

var connectionFields = map[string]connectionField{
	"baseUrl": {
		apply: func(s *models.ConnectionSettings, raw json.RawMessage) error {
			return decodeText(raw, &s.BaseURL)
		},
		clear: func(s *models.ConnectionSettings) { s.BaseURL = "" },
	},
	"courseId": {
		apply: func(s *models.ConnectionSettings, raw json.RawMessage) error {
			return decodeIdentifier(raw, &s.CourseID)
		},
		clear: func(s *models.ConnectionSettings) { s.CourseID = "" },
	},
	"assignmentId": {
		apply: func(s *models.ConnectionSettings, raw json.RawMessage) error {
			return decodeIdentifier(raw, &s.AssignmentID)
		},
		clear: func(s *models.ConnectionSettings) { s.AssignmentID = "" },
	},
	"accessToken": {
		apply: func(s *models.ConnectionSettings, raw json.RawMessage) error {
			return decodeText(raw, &s.AccessToken)
		},
		clear: func(s *models.ConnectionSettings) { s.AccessToken = "" },
	},
	"keyBindings": {
		apply: func(s *models.ConnectionSettings, raw json.RawMessage) error {
			var bindings map[string]string
			if err := json.Unmarshal(raw, &bindings); err != nil {
				return fmt.Errorf("must be an object of strings")
			}
			s.KeyBindings = bindings
			return nil
		},
		clear: func(s *models.ConnectionSettings) { s.KeyBindings = nil },
	},
}

// ConnectionService owns the persisted connection settings.
type ConnectionService struct {
	repo      connectionRepository
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewConnectionService constructs the service.
func NewConnectionService(repo connectionRepository, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *ConnectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{repo: repo, validator: validate, cache: cache, logger: logger}
}

// Get returns the stored settings including the token.
func (s *ConnectionService) Get(ctx context.Context) (models.ConnectionSettings, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return models.ConnectionSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load connection settings")
	}
	return settings, nil
}

// Public returns the redacted settings.
func (s *ConnectionService) Public(ctx context.Context) (models.PublicConnectionSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return models.PublicConnectionSettings{}, err
	}
	return settings.Public(), nil
}

// Merge applies a partial JSON object: absent keys are preserved, null clears a key and
// any other value overwrites it.
func (s *ConnectionService) Merge(ctx context.Context, raw []byte) (models.PublicConnectionSettings, error) {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(raw, &patch); err != nil || patch == nil {
		return models.PublicConnectionSettings{}, appErrors.Clone(appErrors.ErrValidation, "settings must be a JSON object")
	}

	var unknown []string
	for key := range patch {
		if _, ok := connectionFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.PublicConnectionSettings{}, appErrors.Clone(appErrors.ErrValidation, "unknown settings: "+strings.Join(unknown, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return models.PublicConnectionSettings{}, err
	}
	merged := current
	for key, value := range patch {
		field := connectionFields[key]
		if isJSONNull(value) {
			field.clear(&merged)
			continue
		}
		if err := field.apply(&merged, value); err != nil {
			return models.PublicConnectionSettings{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %v", key, err))
		}
	}
	merged.BaseURL = strings.TrimRight(merged.BaseURL, "/")

	if err := s.validator.Struct(merged); err != nil {
		return models.PublicConnectionSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid connection settings")
	}

	if err := s.repo.Save(ctx, merged); err != nil {
		return models.PublicConnectionSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save connection settings")
	}

	if current.BaseURL != merged.BaseURL || current.CourseID != merged.CourseID || current.AccessToken != merged.AccessToken {
		if err := s.cache.Invalidate(ctx, cache.Key("assignments", "*")); err != nil {
			s.logger.Warn("assignment cache not invalidated", zap.Error(err))
		}
	}
	s.logger.Info("connection settings updated",
		zap.Strings("keys", sortedKeys(patch)),
		zap.Bool("has_token", merged.AccessToken != ""),
	)
	return merged.Public(), nil
}

// RequireRemote returns the settings when the remote can be reached at course level.
func (s *ConnectionService) RequireRemote(ctx context.Context) (models.ConnectionSettings, error) {
	return s.require(ctx, false)
}

// RequireAssignment additionally requires an assignment to be selected.
func (s *ConnectionService) RequireAssignment(ctx context.Context) (models.ConnectionSettings, error) {
	return s.require(ctx, true)
}

func (s *ConnectionService) require(ctx context.Context, withAssignment bool) (models.ConnectionSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return settings, err
	}
	var missing []string
	if settings.BaseURL == "" {
		missing = append(missing, "baseUrl")
	}
	if settings.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if settings.CourseID == "" {
		missing = append(missing, "courseId")
	}
	if withAssignment && settings.AssignmentID == "" {
		missing = append(missing, "assignmentId")
	}
	if len(missing) > 0 {
		return settings, appErrors.Clone(appErrors.ErrMissingConfiguration, "missing connection settings: "+strings.Join(missing, ", "))
	}
	return settings, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeText(raw json.RawMessage, dest *string) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("must be a string")
	}
	*dest = strings.TrimSpace(value)
	return nil
}

// decodeIdentifier accepts ids sent either as strings or as JSON numbers.
func decodeIdentifier(raw json.RawMessage, dest *string) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("must be a string or number")
	}
	switch v := value.(type) {
	case string:
		*dest = strings.TrimSpace(v)
	case json.Number:
		*dest = v.String()
	default:
		return fmt.Errorf("must be a string or number")
	}
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
