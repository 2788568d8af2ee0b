package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
)

// ModelHandler exposes the scoring service's model inventory.
type ModelHandler struct {
	predictionService *service.PredictionService
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(predictionService *service.PredictionService) *ModelHandler {
	return &ModelHandler{predictionService: predictionService}
}

// List godoc
// GET /api/v1/models
// Returns the models available for prediction. Falls back to the baseline
// inventory when the scoring service is unreachable.
func (h *ModelHandler) List(c *gin.Context) {
	models := h.predictionService.ListModels(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"models": models})
}
