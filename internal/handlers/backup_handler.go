package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type BackupHandler struct {
	BaseHandler
	backupService services.BackupService
}

func NewBackupHandler(backupService services.BackupService, logger utils.Logger) *BackupHandler {
	return &BackupHandler{
		BaseHandler:   NewBaseHandler(logger),
		backupService: backupService,
	}
}

// ExportBackup downloads the whole database as a JSON document
// @Summary Export backup
// @Tags backup
// @Produce json
// @Success 200 {object} models.BackupDocument
// @Router /backup/export [get]
func (h *BackupHandler) ExportBackup(c *gin.Context) {
	h.LogRequest(c, "Exporting backup")

	doc, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("giza-backup-%s.json", doc.Timestamp.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, doc)
}

// ImportBackup replaces users, exams and folders with the uploaded document.
// The destructive replace only runs with confirm=true.
// @Summary Import backup
// @Tags backup
// @Accept json
// @Produce json
// @Param confirm query bool true "Confirm destructive replace"
// @Param backup body models.BackupDocument true "Backup document"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /backup/import [post]
func (h *BackupHandler) ImportBackup(c *gin.Context) {
	confirm, err := strconv.ParseBool(c.DefaultQuery("confirm", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid confirm parameter"})
		return
	}

	var doc models.BackupDocument
	if !h.bindJSON(c, &doc) {
		return
	}

	h.LogRequest(c, "Importing backup", "users", len(doc.Users), "exams", len(doc.Exams), "folders", len(doc.Folders))

	if err := h.backupService.Import(c.Request.Context(), c.GetString(ctxUserID), &doc, confirm); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Backup imported"})
}
