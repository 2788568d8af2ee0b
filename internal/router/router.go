package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retainhq/retain-backend/internal/config"
	"github.com/retainhq/retain-backend/internal/handler"
	"github.com/retainhq/retain-backend/internal/middleware"
	"github.com/retainhq/retain-backend/internal/response"
	"github.com/retainhq/retain-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	CollegeAdmin *handler.CollegeAdminHandler
	Student      *handler.StudentHandler
	Dashboard    *handler.DashboardHandler
	Dataset      *handler.DatasetHandler
	Model        *handler.ModelHandler
	WS           *handler.WSHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check and Prometheus metrics.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. WebSocket Group (WS Auth via ?token=) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/predictions", handlers.WS.PredictionFeed)
	}

	// ─── 3. API Group (JWT + Session) ──────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireJWT(authService),
		middleware.CheckSession(authService),
	)
	{
		// College admin management
		api.GET("/college-admins", handlers.CollegeAdmin.List)
		api.GET("/college-admins/active", handlers.CollegeAdmin.ListActive)
		api.GET("/college-admins/:id", handlers.CollegeAdmin.Get)
		api.POST("/college-admins", handlers.CollegeAdmin.Create)
		api.PUT("/college-admins/:id", handlers.CollegeAdmin.Update)
		api.DELETE("/college-admins/:id", handlers.CollegeAdmin.Delete)
		api.GET("/college-admins/:id/statistics", handlers.CollegeAdmin.Statistics)

		// Student records and predictions
		api.GET("/students", handlers.Student.List)
		api.POST("/students", handlers.Student.Create)
		api.GET("/students/:id", handlers.Student.Get)
		api.PUT("/students/:id", handlers.Student.Update)
		api.DELETE("/students/:id", handlers.Student.Delete)
		api.POST("/students/:id/predict", handlers.Student.Predict)
		api.GET("/students/:id/predictions", handlers.Student.Predictions)

		// Dashboard
		api.GET("/dashboard", handlers.Dashboard.Get)

		// Scoring models
		api.GET("/models", handlers.Model.List)

		// External datasets
		api.GET("/datasets", handlers.Dataset.List)
		api.POST("/datasets/:id/sync", handlers.Dataset.Sync)

		// System Monitoring
		api.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
