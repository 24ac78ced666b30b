package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type AnnouncementHandler struct {
	BaseHandler
	announcementService services.AnnouncementService
}

func NewAnnouncementHandler(announcementService services.AnnouncementService, logger utils.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		BaseHandler:         NewBaseHandler(logger),
		announcementService: announcementService,
	}
}

func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	items, err := h.announcementService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req models.AnnouncementCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.announcementService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	if err := h.announcementService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Announcement deleted"})
}
