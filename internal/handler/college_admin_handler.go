package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
	"github.com/retainhq/retain-backend/internal/validator"
)

// CollegeAdminHandler handles college admin management endpoints.
type CollegeAdminHandler struct {
	adminService *service.AdminService
}

// NewCollegeAdminHandler creates a new CollegeAdminHandler.
func NewCollegeAdminHandler(adminService *service.AdminService) *CollegeAdminHandler {
	return &CollegeAdminHandler{adminService: adminService}
}

// List godoc
// GET /api/v1/college-admins?active=&search=&page=&per_page=
func (h *CollegeAdminHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	search := c.Query("search")

	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		active = &v
	}

	admins, total, err := h.adminService.List(c.Request.Context(), active, search, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, admins, response.NewPagination(page, perPage, total))
}

// ListActive godoc
// GET /api/v1/college-admins/active
func (h *CollegeAdminHandler) ListActive(c *gin.Context) {
	admins, err := h.adminService.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, admins)
}

// Get godoc
// GET /api/v1/college-admins/:id
func (h *CollegeAdminHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, admin)
}

// Create godoc
// POST /api/v1/college-admins
func (h *CollegeAdminHandler) Create(c *gin.Context) {
	var req model.CreateCollegeAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, admin)
}

// Update godoc
// PUT /api/v1/college-admins/:id
func (h *CollegeAdminHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCollegeAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		}
		return
	}
	response.Success(c, http.StatusOK, admin)
}

// Delete godoc
// DELETE /api/v1/college-admins/:id
// Admins that still own students cannot be deleted.
func (h *CollegeAdminHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrHasStudents) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Statistics godoc
// GET /api/v1/college-admins/:id/statistics
func (h *CollegeAdminHandler) Statistics(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.adminService.Statistics(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
