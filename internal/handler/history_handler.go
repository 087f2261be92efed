package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-assistant/internal/dto"
	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/pkg/response"
)

type historyService interface {
	List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)
}

// HistoryHandler lists past sync outcomes.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler constructs the handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List godoc
// @Summary Grading history, newest first
// @Tags History
// @Produce json
// @Param assignmentId query string false "Assignment ID"
// @Param userId query int false "Student user ID"
// @Param limit query int false "Maximum entries (default 100)"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid history query"))
		return
	}
	entries, err := h.service.List(c.Request.Context(), models.HistoryFilter{
		AssignmentID: query.AssignmentID,
		UserID:       query.UserID,
		Limit:        query.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}
