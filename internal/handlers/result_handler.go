package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	reportService services.ReportService
}

func NewResultHandler(resultService services.ResultService, reportService services.ReportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		reportService: reportService,
	}
}

func (h *ResultHandler) MyResults(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	results, err := h.resultService.StudentResults(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// MyStats returns completed count, average and top percentage of the caller
// @Summary Student statistics
// @Tags results
// @Produce json
// @Success 200 {object} models.StudentStats
// @Router /students/me/stats [get]
func (h *ResultHandler) MyStats(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.resultService.StudentStats(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ResultHandler) ListResults(c *gin.Context) {
	results, err := h.resultService.ListResults(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportResults streams every result as an XLSX workbook
// @Summary Export results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /results/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	h.LogRequest(c, "Exporting results")

	data, err := h.reportService.ExportResults(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam-results-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
