package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type CurationHandler struct {
	BaseHandler
	curationService services.CurationService
}

func NewCurationHandler(curationService services.CurationService, logger utils.Logger) *CurationHandler {
	return &CurationHandler{
		BaseHandler:     NewBaseHandler(logger),
		curationService: curationService,
	}
}

// ===== FOLDERS =====

func (h *CurationHandler) ListFolders(c *gin.Context) {
	folders, err := h.curationService.ListFolders(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

// CreateFolder creates a folder at the root or under a parent
// @Summary Create folder
// @Tags folders
// @Accept json
// @Produce json
// @Param folder body models.FolderCreateRequest true "Folder data"
// @Success 201 {object} models.Folder
// @Failure 400 {object} ErrorResponse
// @Router /folders [post]
func (h *CurationHandler) CreateFolder(c *gin.Context) {
	var req models.FolderCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating folder", "name", req.Name)

	folder, err := h.curationService.CreateFolder(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// UpdateFolder renames or moves a folder
// @Summary Update folder
// @Tags folders
// @Accept json
// @Produce json
// @Param id path string true "Folder ID"
// @Param folder body models.FolderUpdateRequest true "Changes"
// @Success 200 {object} models.Folder
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /folders/{id} [put]
func (h *CurationHandler) UpdateFolder(c *gin.Context) {
	var req models.FolderUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	folder, err := h.curationService.UpdateFolder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func (h *CurationHandler) DeleteFolder(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting folder", "folder_id", id)

	if err := h.curationService.DeleteFolder(c.Request.Context(), id, c.GetString(ctxUserID)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Folder deleted"})
}

// ===== EXAMS =====

// ListExams returns every exam to admins and publishable exams without
// answer keys to students
func (h *CurationHandler) ListExams(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	exams, err := h.curationService.ListExams(c.Request.Context(), user.IsAdmin())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *CurationHandler) GetExam(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	exam, err := h.curationService.GetExam(c.Request.Context(), c.Param("id"), user.IsAdmin())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// CreateExam creates an exam with its questions
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body models.ExamCreateRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams [post]
func (h *CurationHandler) CreateExam(c *gin.Context) {
	var req models.ExamCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating exam", "title", req.Title)

	exam, err := h.curationService.CreateExam(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

func (h *CurationHandler) UpdateExam(c *gin.Context) {
	var req models.ExamUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.curationService.UpdateExam(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *CurationHandler) DeleteExam(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting exam", "exam_id", id)

	if err := h.curationService.DeleteExam(c.Request.Context(), id, c.GetString(ctxUserID)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Exam deleted"})
}

// ===== QUESTIONS =====

func (h *CurationHandler) AddQuestion(c *gin.Context) {
	var req models.QuestionInput
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.curationService.AddQuestion(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

func (h *CurationHandler) UpdateQuestion(c *gin.Context) {
	var req models.QuestionPatch
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.curationService.UpdateQuestion(c.Request.Context(), c.Param("id"), c.Param("question_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *CurationHandler) RemoveQuestion(c *gin.Context) {
	exam, err := h.curationService.RemoveQuestion(c.Request.Context(), c.Param("id"), c.Param("question_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}
