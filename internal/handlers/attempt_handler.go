package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt starts a timed attempt, or resumes the caller's running one
// @Summary Start exam attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body models.StartAttemptRequest true "Exam to attempt"
// @Success 201 {object} services.AttemptView
// @Success 200 {object} services.AttemptView "Resumed attempt"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req models.StartAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ExamID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "examId is required"})
		return
	}

	h.LogRequest(c, "Starting attempt", "exam_id", req.ExamID, "student_id", user.ID)

	view, err := h.attemptService.Start(c.Request.Context(), user.ID, req.ExamID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if view.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, view)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	view, err := h.attemptService.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitAnswer records the answer to one question of a running attempt
// @Summary Submit answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param answer body models.AnswerRequest true "Answer"
// @Success 200 {object} services.AttemptView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/answers [put]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.attemptService.Answer(c.Request.Context(), c.Param("id"), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AttemptHandler) NextQuestion(c *gin.Context) {
	h.navigate(c, h.attemptService.Next)
}

func (h *AttemptHandler) PreviousQuestion(c *gin.Context) {
	h.navigate(c, h.attemptService.Previous)
}

// SubmitAttempt grades the attempt and stores the result
// @Summary Submit attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.ExamResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", c.Param("id"))

	result, err := h.attemptService.Submit(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) CancelAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.attemptService.Cancel(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt cancelled"})
}

type navigateFunc func(ctx context.Context, attemptID, studentID string) (*services.AttemptView, error)

func (h *AttemptHandler) navigate(c *gin.Context, move navigateFunc) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	view, err := move(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
