package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/handler"
	"github.com/sujittra/Uni-Exam/internal/middleware"
	"github.com/sujittra/Uni-Exam/internal/response"
	"github.com/sujittra/Uni-Exam/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Teacher       *handler.TeacherHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth group (public).
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)
	}

	// Student group (JWT + session check).
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckStudentSession(authService),
	)
	{
		studentAPI.GET("/exams", handlers.StudentPortal.ListExams)
		studentAPI.POST("/exams/:exam_id/open", handlers.StudentPortal.OpenExam)
		studentAPI.GET("/exams/:exam_id/state", handlers.StudentPortal.GetState)
		studentAPI.PUT("/exams/:exam_id/answer", handlers.StudentPortal.SaveAnswer)
		studentAPI.PUT("/exams/:exam_id/position", handlers.StudentPortal.Navigate)
		studentAPI.POST("/exams/:exam_id/run", handlers.StudentPortal.RunCode)
		studentAPI.POST("/exams/:exam_id/submit", handlers.StudentPortal.Submit)
		studentAPI.POST("/exams/:exam_id/resync", handlers.StudentPortal.Resync)
	}

	// WebSocket group (student WS auth via ?token=).
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.SessionStream)
	}

	// Teacher group.
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/exams/:exam_id/results", handlers.Teacher.ExamResults)
	}

	return router
}
