package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/handler"
	"github.com/stemsi/cybertest-backend/internal/middleware"
	"github.com/stemsi/cybertest-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// examLimiter throttles the candidate-facing exam routes and may be nil.
func SetupRouter(
	tokens middleware.TokenValidator,
	examLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ClientIP keys the login limiter and the exam throttle, so forwarding headers are
	// only honoured from configured proxies.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("Invalid TRUSTED_PROXIES, ignoring forwarding headers")
		_ = router.SetTrustedProxies(nil)
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID, middleware.HeaderExamSession}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, middleware.HeaderExamSession}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so every response, including errors, carries metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	if handlers.System != nil {
		router.GET("/health", handlers.System.Health)
	} else {
		router.GET("/health", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
		})
	}

	// ─── 1. Auth Group (Public, attempt-limited in the service) ────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(tokens), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Exam Group (Session token, rate limited) ───────────────────
	examAPI := router.Group("/api/v1/exam")
	if examLimiter != nil {
		examAPI.Use(examLimiter.Middleware())
	}
	examAPI.Use(middleware.ExamSessionToken())
	{
		examAPI.POST("/start", handlers.Exam.StartExam)
		examAPI.POST("/answer", middleware.RequireExamSession(), handlers.Exam.SubmitAnswer)
		examAPI.GET("/status", handlers.Exam.ExamStatus)
		examAPI.POST("/clear", handlers.Exam.ClearExam)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	if handlers.WS != nil {
		ws := router.Group("/ws/v1")
		if examLimiter != nil {
			ws.Use(examLimiter.Middleware())
		}
		ws.Use(middleware.ExamSessionToken(), middleware.RequireExamSession())
		{
			ws.GET("/exam/stream", handlers.WS.ExamStream)
		}
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(tokens))
	{
		adminAPI.GET("/versions", handlers.Question.ListVersions)

		adminAPI.GET("/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		if handlers.System != nil {
			adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
		}
	}

	return router
}
