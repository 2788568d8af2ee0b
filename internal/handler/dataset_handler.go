package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retainhq/retain-backend/internal/repository"
	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
)

// DatasetHandler handles external dataset endpoints.
type DatasetHandler struct {
	datasetService *service.DatasetService
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(datasetService *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

// List godoc
// GET /api/v1/datasets
// Returns all active external datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	datasets, err := h.datasetService.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, datasets)
}

// Sync godoc
// POST /api/v1/datasets/:id/sync
// Fetches the dataset's source and records the refreshed metadata.
func (h *DatasetHandler) Sync(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	dataset, err := h.datasetService.Sync(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDatasetNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrDatasetSyncFailed):
			response.Fail(c, http.StatusBadGateway, response.ErrDatasetSyncFailed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, dataset)
}
