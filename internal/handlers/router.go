package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/utils"
)

type HandlerManager struct {
	serviceManager      services.ServiceManager
	metrics             *metrics.Metrics
	authHandler         *AuthHandler
	curationHandler     *CurationHandler
	attemptHandler      *AttemptHandler
	resultHandler       *ResultHandler
	userHandler         *UserHandler
	announcementHandler *AnnouncementHandler
	backupHandler       *BackupHandler
	authMiddleware      *SessionAuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, m *metrics.Metrics) *HandlerManager {
	return &HandlerManager{
		serviceManager:      serviceManager,
		metrics:             m,
		authHandler:         NewAuthHandler(serviceManager.Auth(), logger),
		curationHandler:     NewCurationHandler(serviceManager.Curation(), logger),
		attemptHandler:      NewAttemptHandler(serviceManager.Attempt(), logger),
		resultHandler:       NewResultHandler(serviceManager.Result(), serviceManager.Report(), logger),
		userHandler:         NewUserHandler(serviceManager.User(), serviceManager.Dashboard(), logger),
		announcementHandler: NewAnnouncementHandler(serviceManager.Announcement(), logger),
		backupHandler:       NewBackupHandler(serviceManager.Backup(), logger),
		authMiddleware:      NewSessionAuthMiddleware(serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.Handler())
	}

	v1 := router.Group("/api/v1")

	// Public auth routes
	public := v1.Group("/auth")
	{
		public.POST("/register", hm.authHandler.Register)
		public.POST("/login", hm.authHandler.Login)
		public.POST("/bypass", hm.authHandler.BypassLogin)
	}

	api := v1.Group("")
	api.Use(hm.authMiddleware.AuthMiddleware())
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)
	{
		api.POST("/auth/logout", hm.authHandler.Logout)
		api.GET("/auth/me", hm.authHandler.Me)
		api.PUT("/me/preferences", hm.authHandler.UpdatePreferences)

		folders := api.Group("/folders")
		{
			folders.GET("", hm.curationHandler.ListFolders)
			folders.POST("", adminOnly, hm.curationHandler.CreateFolder)
			folders.PUT("/:id", adminOnly, hm.curationHandler.UpdateFolder)
			folders.DELETE("/:id", adminOnly, hm.curationHandler.DeleteFolder)
		}

		exams := api.Group("/exams")
		{
			exams.GET("", hm.curationHandler.ListExams)
			exams.GET("/:id", hm.curationHandler.GetExam)
			exams.POST("", adminOnly, hm.curationHandler.CreateExam)
			exams.PUT("/:id", adminOnly, hm.curationHandler.UpdateExam)
			exams.DELETE("/:id", adminOnly, hm.curationHandler.DeleteExam)

			exams.POST("/:id/questions", adminOnly, hm.curationHandler.AddQuestion)
			exams.PUT("/:id/questions/:question_id", adminOnly, hm.curationHandler.UpdateQuestion)
			exams.DELETE("/:id/questions/:question_id", adminOnly, hm.curationHandler.RemoveQuestion)
		}

		attempts := api.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.PUT("/:id/answers", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/next", hm.attemptHandler.NextQuestion)
			attempts.POST("/:id/previous", hm.attemptHandler.PreviousQuestion)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.POST("/:id/cancel", hm.attemptHandler.CancelAttempt)
		}

		students := api.Group("/students/me")
		{
			students.GET("/results", hm.resultHandler.MyResults)
			students.GET("/stats", hm.resultHandler.MyStats)
		}

		results := api.Group("/results", adminOnly)
		{
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/export", hm.resultHandler.ExportResults)
		}

		users := api.Group("/users", adminOnly)
		{
			users.GET("", hm.userHandler.ListUsers)
			users.POST("/:id/ban", hm.userHandler.ToggleBan)
			users.POST("/:id/role", hm.userHandler.ToggleRole)
		}
		api.GET("/dashboard/stats", adminOnly, hm.userHandler.DashboardStats)

		announcements := api.Group("/announcements")
		{
			announcements.GET("", hm.announcementHandler.ListAnnouncements)
			announcements.POST("", adminOnly, hm.announcementHandler.CreateAnnouncement)
			announcements.DELETE("/:id", adminOnly, hm.announcementHandler.DeleteAnnouncement)
		}

		backup := api.Group("/backup", adminOnly)
		{
			backup.GET("/export", hm.backupHandler.ExportBackup)
			backup.POST("/import", hm.backupHandler.ImportBackup)
		}
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
