package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService      services.UserService
	dashboardService services.DashboardService
}

func NewUserHandler(userService services.UserService, dashboardService services.DashboardService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:      NewBaseHandler(logger),
		userService:      userService,
		dashboardService: dashboardService,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ToggleBan bans or unbans a user. Privileged accounts cannot be banned.
// @Summary Toggle ban
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/ban [post]
func (h *UserHandler) ToggleBan(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Toggling ban", "target_id", c.Param("id"), "actor_id", actor.ID)

	profile, err := h.userService.ToggleBan(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) ToggleRole(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Toggling role", "target_id", c.Param("id"), "actor_id", actor.ID)

	profile, err := h.userService.ToggleRole(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
