package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-assistant/internal/models"
	"github.com/noah-isme/grading-assistant/pkg/response"
)

type connectionService interface {
	Public(ctx context.Context) (models.PublicConnectionSettings, error)
	Merge(ctx context.Context, raw []byte) (models.PublicConnectionSettings, error)
}

// ConfigHandler exposes the connection settings.
type ConfigHandler struct {
	service connectionService
}

// NewConfigHandler builds a new handler.
func NewConfigHandler(service connectionService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// Get godoc
// @Summary Redacted connection settings
// @Tags Config
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	settings, err := h.service.Public(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// Update godoc
// @Summary Merge connection settings
// @Description Absent keys are kept, null clears a key, any other value overwrites it.
// @Tags Config
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /config [post]
func (h *ConfigHandler) Update(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, bindError(err, "unable to read request body"))
		return
	}
	settings, err := h.service.Merge(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}
