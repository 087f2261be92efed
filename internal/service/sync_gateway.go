package service

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

// SyncFailureMessage is the only error detail returned to the grader for a failed push.
const SyncFailureMessage = "failed to sync submission"

type submissionWriter interface {
	UpdateSubmission(ctx context.Context, userID int64, form url.Values) error
}

type historyRecorder interface {
	Record(ctx context.Context, entries []models.HistoryEntry)
}

// SyncTarget identifies where a batch of updates is pushed.
type SyncTarget struct {
	BatchID      string
	CourseID     string
	AssignmentID string
}

// SyncGateway pushes submission updates to the remote gradebook one at a time.
type SyncGateway struct {
	validator *validator.Validate
	metrics   *MetricsService
	recorder  historyRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewSyncGateway constructs the gateway. recorder may be nil.
func NewSyncGateway(validate *validator.Validate, metrics *MetricsService, recorder historyRecorder, logger *zap.Logger) *SyncGateway {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncGateway{validator: validate, metrics: metrics, recorder: recorder, logger: logger, now: time.Now}
}

// Push sends every update in order and returns one result per update. A failure never
// aborts the remaining updates and is not retried.
func (g *SyncGateway) Push(ctx context.Context, writer submissionWriter, target SyncTarget, updates []models.SubmissionUpdate) ([]models.SyncResult, error) {
	if len(updates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no updates to sync")
	}
	for i := range updates {
		if err := g.validator.Struct(updates[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission update")
		}
	}
	if target.BatchID == "" {
		target.BatchID = uuid.NewString()
	}

	results := make([]models.SyncResult, 0, len(updates))
	entries := make([]models.HistoryEntry, 0, len(updates))
	for _, update := range updates {
		result := models.SyncResult{UserID: update.UserID, Success: true}
		form := SubmissionForm(update)
		if len(form) > 0 {
			if err := writer.UpdateSubmission(ctx, update.UserID, form); err != nil {
				g.logger.Error("submission sync failed",
					zap.String("batch_id", target.BatchID),
					zap.Int64("user_id", update.UserID),
					zap.Strings("fields", formKeys(form)),
					zap.Error(err),
				)
				result = models.SyncResult{UserID: update.UserID, Success: false, Error: SyncFailureMessage}
			}
		}
		g.metrics.RecordSyncOutcome(result.Success)
		results = append(results, result)
		entries = append(entries, g.historyEntry(target, update, result))
	}

	if g.recorder != nil {
		g.recorder.Record(ctx, entries)
	}
	return results, nil
}

func (g *SyncGateway) historyEntry(target SyncTarget, update models.SubmissionUpdate, result models.SyncResult) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:           uuid.NewString(),
		BatchID:      target.BatchID,
		CourseID:     target.CourseID,
		AssignmentID: target.AssignmentID,
		UserID:       update.UserID,
		Status:       update.Status,
		Success:      result.Success,
		CreatedAt:    g.now().UTC(),
	}
	if update.GradeChanged {
		entry.Grade = update.Grade
	}
	if entry.Status == "" {
		entry.Status = models.StatusNone
	}
	if update.CommentChanged {
		comment := update.Comment
		entry.Comment = &comment
	}
	if !result.Success {
		msg := result.Error
		entry.Error = &msg
	}
	return entry
}

// SubmissionForm renders the partial, form-encoded payload for one update. Only the keys
// whose changed flag is set are included.
func SubmissionForm(update models.SubmissionUpdate) url.Values {
	form := url.Values{}
	if update.GradeChanged {
		grade := ""
		if update.Grade != nil {
			grade = strconv.FormatFloat(*update.Grade, 'f', -1, 64)
		}
		form.Set("submission[posted_grade]", grade)
	}
	if update.CommentChanged {
		if text := strings.TrimSpace(update.Comment); text != "" {
			form.Set("comment[text_comment]", text)
		}
	}
	if update.StatusChanged {
		if update.Status == models.StatusExcused {
			form.Set("submission[excuse]", "true")
		} else {
			form.Set("submission[excuse]", "false")
			status := update.Status
			if status == "" {
				status = models.StatusNone
			}
			form.Set("submission[late_policy_status]", string(status))
		}
	}
	if update.RubricCommentsChanged {
		// The remote replaces the whole assessment, so existing scores ride along.
		for criterionID, existing := range update.RubricAssessment {
			form.Set(rubricKey(criterionID, "comments"), existing.Comments)
			if existing.Points != nil {
				form.Set(rubricKey(criterionID, "points"), strconv.FormatFloat(*existing.Points, 'f', -1, 64))
			}
			if existing.RatingID != "" {
				form.Set(rubricKey(criterionID, "rating_id"), existing.RatingID)
			}
		}
		for criterionID, text := range update.RubricComments {
			form.Set(rubricKey(criterionID, "comments"), text)
		}
	}
	return form
}

func rubricKey(criterionID, field string) string {
	return "rubric_assessment[" + criterionID + "][" + field + "]"
}

func formKeys(form url.Values) []string {
	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
