package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/internal/service"
	"github.com/noah-isme/grading-assistant/pkg/response"
)

type clientStateService interface {
	Get(ctx context.Context, key models.ClientStateKey) (json.RawMessage, error)
	Put(ctx context.Context, key models.ClientStateKey, value []byte) error
}

// StateHandler stores opaque frontend state blobs under fixed keys.
type StateHandler struct {
	service clientStateService
}

// NewStateHandler constructs the handler.
func NewStateHandler(service clientStateService) *StateHandler {
	return &StateHandler{service: service}
}

// Get godoc
// @Summary Read a client state blob
// @Tags State
// @Produce json
// @Param key path string true "autosave, history, ui-preferences, dark-mode or last-session"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /state/{key} [get]
func (h *StateHandler) Get(c *gin.Context) {
	key, err := service.ParseClientStateKey(c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	value, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, value)
}

// Put godoc
// @Summary Replace a client state blob
// @Tags State
// @Accept json
// @Produce json
// @Param key path string true "State key"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /state/{key} [put]
func (h *StateHandler) Put(c *gin.Context) {
	key, err := service.ParseClientStateKey(c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, bindError(err, "unable to read request body"))
		return
	}
	if err := h.service.Put(c.Request.Context(), key, raw); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
