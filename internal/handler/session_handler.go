package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-assistant/internal/drafts"
	"github.com/noah-isme/grading-assistant/internal/dto"
	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/service"
	"github.com/noah-isme/grading-assistant/pkg/response"
)

type sessionService interface {
	Load(ctx context.Context) (models.SessionState, error)
	State() models.SessionState
	Stats() models.DraftStats
	SetGrade(ctx context.Context, userID int64, raw string) (models.SessionState, error)
	SetComment(ctx context.Context, userID int64, text string) (models.SessionState, error)
	SetStatus(ctx context.Context, userID int64, status models.SubmissionStatus) (models.SessionState, error)
	SetRubricComment(ctx context.Context, userID int64, criterionID, text string) (models.SessionState, error)
	CopyToGroup(ctx context.Context, userID int64, field drafts.GroupField, value string) (models.SessionState, int, error)
	ClearAll(ctx context.Context) (models.SessionState, error)
	ClearOne(ctx context.Context, userID int64) (models.SessionState, error)
	Flush(ctx context.Context) (models.SyncSummary, error)
	Export(format service.ExportFormat) (*service.ExportedFile, error)
}

// SessionHandler drives the grading session: loading, staging edits and flushing them.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Load godoc
// @Summary Load submissions and build drafts
// @Description Replays the autosave snapshot when it belongs to the configured assignment.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /session/load [post]
func (h *SessionHandler) Load(c *gin.Context) {
	state, err := h.service.Load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// State godoc
// @Summary Current submissions, drafts and stats
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) State(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.State())
}

// Stats godoc
// @Summary Aggregate draft counters
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/stats [get]
func (h *SessionHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Stats())
}

// SetGrade godoc
// @Summary Stage a grade
// @Description Non-numeric values are ignored and the unchanged state is returned.
// @Tags Session
// @Accept json
// @Produce json
// @Param userId path int true "Student user ID"
// @Param payload body dto.DraftValueRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId}/grade [put]
func (h *SessionHandler) SetGrade(c *gin.Context) {
	h.editValue(c, func(ctx context.Context, userID int64, value string) (models.SessionState, error) {
		return h.service.SetGrade(ctx, userID, value)
	})
}

// SetComment godoc
// @Summary Stage the submission comment
// @Tags Session
// @Accept json
// @Produce json
// @Param userId path int true "Student user ID"
// @Param payload body dto.DraftValueRequest true "Comment"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId}/comment [put]
func (h *SessionHandler) SetComment(c *gin.Context) {
	h.editValue(c, h.service.SetComment)
}

// SetStatus godoc
// @Summary Stage the submission status
// @Tags Session
// @Accept json
// @Produce json
// @Param userId path int true "Student user ID"
// @Param payload body dto.DraftValueRequest true "One of none, late, missing, excused"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId}/status [put]
func (h *SessionHandler) SetStatus(c *gin.Context) {
	h.editValue(c, func(ctx context.Context, userID int64, value string) (models.SessionState, error) {
		return h.service.SetStatus(ctx, userID, models.SubmissionStatus(value))
	})
}

// SetRubricComment godoc
// @Summary Stage the comment of one rubric criterion
// @Tags Session
// @Accept json
// @Produce json
// @Param userId path int true "Student user ID"
// @Param criterionId path string true "Rubric criterion ID"
// @Param payload body dto.DraftValueRequest true "Comment"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId}/rubric/{criterionId} [put]
func (h *SessionHandler) SetRubricComment(c *gin.Context) {
	criterionID := c.Param("criterionId")
	h.editValue(c, func(ctx context.Context, userID int64, value string) (models.SessionState, error) {
		return h.service.SetRubricComment(ctx, userID, criterionID, value)
	})
}

// CopyToGroup godoc
// @Summary Copy a grade or comment to the rest of the student's group
// @Tags Session
// @Accept json
// @Produce json
// @Param userId path int true "Student user ID"
// @Param payload body dto.CopyToGroupRequest true "Field and value"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId}/copy-to-group [post]
func (h *SessionHandler) CopyToGroup(c *gin.Context) {
	userID, err := int64Param(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CopyToGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "field must be grade or comment"))
		return
	}
	state, copied, err := h.service.CopyToGroup(c.Request.Context(), userID, drafts.GroupField(req.Field), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CopyToGroupResponse{Copied: copied, State: state})
}

// Flush godoc
// @Summary Push every staged draft to the gradebook
// @Description Failed students stay staged; the summary lists every outcome.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /session/flush [post]
func (h *SessionHandler) Flush(c *gin.Context) {
	summary, err := h.service.Flush(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// ClearAll godoc
// @Summary Discard every staged edit
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/drafts [delete]
func (h *SessionHandler) ClearAll(c *gin.Context) {
	state, err := h.service.ClearAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// ClearOne godoc
// @Summary Discard the staged edits of one student
// @Tags Session
// @Produce json
// @Param userId path int true "Student user ID"
// @Success 200 {object} response.Envelope
// @Router /session/drafts/{userId} [delete]
func (h *SessionHandler) ClearOne(c *gin.Context) {
	userID, err := int64Param(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.service.ClearOne(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Export godoc
// @Summary Download the grading sheet
// @Tags Session
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /session/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+file.Filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

type valueEdit func(ctx context.Context, userID int64, value string) (models.SessionState, error)

func (h *SessionHandler) editValue(c *gin.Context, apply valueEdit) {
	userID, err := int64Param(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DraftValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "value is required"))
		return
	}
	state, err := apply(c.Request.Context(), userID, *req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}
