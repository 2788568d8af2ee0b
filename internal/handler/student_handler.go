package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/middleware"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
	"github.com/retainhq/retain-backend/internal/validator"
)

// StudentHandler handles student record and prediction endpoints. Every
// route is scoped to the authenticated admin's own students.
type StudentHandler struct {
	studentService    *service.StudentService
	predictionService *service.PredictionService
	dashboardService  *service.DashboardService
	log               zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	studentService *service.StudentService,
	predictionService *service.PredictionService,
	dashboardService *service.DashboardService,
	log zerolog.Logger,
) *StudentHandler {
	return &StudentHandler{
		studentService:    studentService,
		predictionService: predictionService,
		dashboardService:  dashboardService,
		log:               log.With().Str("component", "student_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/students?search=&risk_level=&page=&per_page=
func (h *StudentHandler) List(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	search := c.Query("search")

	riskLevel := model.RiskLevel(c.Query("risk_level"))
	switch riskLevel {
	case "", model.RiskDropout, model.RiskAtRisk, model.RiskSafe:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	students, total, err := h.studentService.List(c.Request.Context(), adminID, search, riskLevel, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, students, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), adminID, id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// Create godoc
// POST /api/v1/students
// Creates a student and immediately scores them. The prediction is part of
// the response; if scoring falls back, the record says so.
func (h *StudentHandler) Create(c *gin.Context) {
	adminID := middleware.GetAdminID(c)

	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), adminID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	prediction, err := h.predictionService.Predict(c.Request.Context(), student, req.Model)
	if err != nil {
		// The student exists; only the prediction record failed to persist.
		h.log.Error().Err(err).Int("student_id", student.ID).Msg("initial prediction failed")
	}
	h.dashboardService.Invalidate(c.Request.Context(), adminID)

	response.Success(c, http.StatusCreated, model.StudentWithRisk{
		Student:          *student,
		LatestPrediction: prediction,
	})
}

// Update godoc
// PUT /api/v1/students/:id
// A fresh prediction runs automatically when academic signals changed.
func (h *StudentHandler) Update(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, rescore, err := h.studentService.Update(c.Request.Context(), adminID, id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var prediction *model.Prediction
	if rescore {
		prediction, err = h.predictionService.Predict(c.Request.Context(), student, "")
		if err != nil {
			h.log.Error().Err(err).Int("student_id", student.ID).Msg("re-prediction failed")
		}
		h.dashboardService.Invalidate(c.Request.Context(), adminID)
	}
	if prediction == nil {
		if latest, err := h.predictionService.Latest(c.Request.Context(), student.ID); err == nil {
			prediction = latest
		}
	}

	response.Success(c, http.StatusOK, model.StudentWithRisk{
		Student:          *student,
		LatestPrediction: prediction,
	})
}

// Delete godoc
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), adminID, id); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	h.dashboardService.Invalidate(c.Request.Context(), adminID)

	response.Success(c, http.StatusOK, gin.H{})
}

// Predict godoc
// POST /api/v1/students/:id/predict
// Runs an on-demand prediction, optionally with an explicit model selector.
func (h *StudentHandler) Predict(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req struct {
		Model string `json:"model" binding:"omitempty,max=128"`
	}
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	student, err := h.studentService.Get(c.Request.Context(), adminID, id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	prediction, err := h.predictionService.Predict(c.Request.Context(), &student.Student, req.Model)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	h.dashboardService.Invalidate(c.Request.Context(), adminID)

	response.Success(c, http.StatusOK, prediction)
}

// Predictions godoc
// GET /api/v1/students/:id/predictions
// Returns the student's full prediction history, newest first.
func (h *StudentHandler) Predictions(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	predictions, err := h.predictionService.History(c.Request.Context(), adminID, id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, predictions)
}
