package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-assistant/internal/middleware"
	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/remote"
	"github.com/noah-isme/grading-assistant/pkg/response"
)

type catalogService interface {
	Assignments(ctx context.Context) ([]models.AssignmentSummary, bool, error)
	AssignmentDetails(ctx context.Context) (*models.AssignmentDetails, error)
	Submissions(ctx context.Context) ([]models.SubmissionRecord, error)
	Attachment(ctx context.Context, userID, fileID int64) (*remote.AttachmentStream, error)
	Sync(ctx context.Context, updates []models.SubmissionUpdate) ([]models.SyncResult, error)
}

// CatalogHandler proxies reads and raw syncs to the remote gradebook.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Assignments godoc
// @Summary List course assignments with submission counts
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /assignments [get]
func (h *CatalogHandler) Assignments(c *gin.Context) {
	assignments, hit, err := h.service.Assignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, assignments, middleware.ExtractMeta(c))
}

// AssignmentDetails godoc
// @Summary Configured assignment with rubric
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignment-details [get]
func (h *CatalogHandler) AssignmentDetails(c *gin.Context) {
	details, err := h.service.AssignmentDetails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Submissions godoc
// @Summary Normalized submissions of the configured assignment
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *CatalogHandler) Submissions(c *gin.Context) {
	submissions, err := h.service.Submissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions)
}

// Attachment godoc
// @Summary Stream a submission attachment
// @Tags Catalog
// @Produce octet-stream
// @Param userId path int true "Student user ID"
// @Param fileId path int true "Attachment ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /submissions/{userId}/file/{fileId} [get]
func (h *CatalogHandler) Attachment(c *gin.Context) {
	userID, err := int64Param(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	fileID, err := int64Param(c, "fileId")
	if err != nil {
		response.Error(c, err)
		return
	}
	stream, err := h.service.Attachment(c.Request.Context(), userID, fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Body.Close()

	name := stream.Name
	if name == "" {
		name = fmt.Sprintf("attachment-%d", fileID)
	}
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("inline", map[string]string{"filename": name}),
		"Cache-Control":       "no-store",
	}
	c.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, headers)
}

// Sync godoc
// @Summary Push submission updates as given
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body []models.SubmissionUpdate true "Updates"
// @Success 200 {object} response.Envelope
// @Router /submissions/sync [post]
func (h *CatalogHandler) Sync(c *gin.Context) {
	var updates []models.SubmissionUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, bindError(err, "invalid sync payload"))
		return
	}
	results, err := h.service.Sync(c.Request.Context(), updates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}
