package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/utils"
)

// Context keys set by the session middleware
const (
	ctxUserID       = "user_id"
	ctxUser         = "user"
	ctxUserRole     = "user_role"
	ctxUserEmail    = "user_email"
	ctxSessionToken = "session_token"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append(args, "error", err)...)
}

// currentUser returns the identity restored by the session middleware
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ctxUser)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, false
	}
	return user, true
}

func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var (
		validationErrs services.ValidationErrors
		permissionErr  *services.PermissionError
	)

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: validationErrs})

	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: permissionErr.Reason})

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrProfileMissing),
		errors.Is(err, services.ErrTwoFactorRequired),
		errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, session.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrAccountBanned),
		errors.Is(err, services.ErrAttemptAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrFolderNotFound),
		errors.Is(err, services.ErrExamNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrAttemptNotFound),
		errors.Is(err, services.ErrAnnouncementNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrFolderCycle),
		errors.Is(err, services.ErrLastQuestion),
		errors.Is(err, services.ErrAttemptNotActive),
		errors.Is(err, services.ErrExamNotAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrParentFolderNotFound),
		errors.Is(err, services.ErrUnknownQuestion),
		errors.Is(err, services.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})

	default:
		h.LogError(c, "Request failed", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
