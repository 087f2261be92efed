package service

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/remote"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
)

// RemoteClient is the subset of the remote gradebook API the services depend on.
type RemoteClient interface {
	ListAssignments(ctx context.Context) ([]models.AssignmentSummary, error)
	GetAssignment(ctx context.Context) (*models.AssignmentDetails, error)
	ListSubmissions(ctx context.Context) ([]models.SubmissionRecord, error)
	OpenAttachment(ctx context.Context, userID, fileID int64) (*remote.AttachmentStream, error)
	UpdateSubmission(ctx context.Context, userID int64, form url.Values) error
}

// RemoteFactory builds a client for the given settings.
type RemoteFactory func(settings models.ConnectionSettings) (RemoteClient, error)

// NewRemoteFactory returns a factory producing HTTP clients with shared options.
func NewRemoteFactory(opts remote.Options) RemoteFactory {
	return func(settings models.ConnectionSettings) (RemoteClient, error) {
		return remote.New(settings, opts)
	}
}

// remoteFailure logs the full remote error and returns the generic error shown to graders.
func remoteFailure(logger *zap.Logger, operation string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, remote.ErrAttachmentNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	if errors.Is(err, context.Canceled) {
		logger.Debug("remote call cancelled", zap.String("operation", operation))
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, appErrors.ErrRemote.Message)
	}

	fields := []zap.Field{zap.String("operation", operation), zap.Error(err)}
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		fields = append(fields, zap.Int("remote_status", remoteErr.StatusCode), zap.String("remote_body", remoteErr.Body))
	}
	logger.Error("remote call failed", fields...)
	return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, appErrors.ErrRemote.Message)
}
