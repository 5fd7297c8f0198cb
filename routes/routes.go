package routes

import (
	"net/http"
	"time"

	"sewa/handlers"
	"sewa/middleware"
	"sewa/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterWorkerRoutes registers worker endpoints.
func RegisterWorkerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workers")
	{
		api.POST("/register", hb.Worker.RegisterWorkerHandler)

		// Protected routes (Require Authentication)
		me := api.Group("/me")
		me.Use(middleware.JWTAuthWorkerMiddleware(hb.WorkerRepo, hb.AuthCache))
		me.GET("", hb.Worker.GetMeHandler)
		me.GET("/eligibility", hb.Worker.GetEligibilityHandler)
		me.POST("/permissions/:action", hb.Worker.CheckPermissionHandler)
		me.PATCH("/online", hb.Worker.SetOnlineHandler)
		me.POST("/bookings/authorize", hb.Worker.AuthorizeBookingHandler)
		me.POST("/documents/:kind", hb.Worker.UploadDocumentHandler)
		me.GET("/documents/:kind", hb.Worker.ReadDocumentHandler)
		me.PUT("/categories", hb.Worker.UpdateCategoriesHandler)
		me.PUT("/fcm-token", hb.Worker.UpdateFCMTokenHandler)
		me.PUT("/app-lock", hb.Worker.SetAppLockHandler)
		me.POST("/app-lock/verify", hb.Worker.VerifyAppLockHandler)
		me.DELETE("/app-lock", hb.Worker.ClearAppLockHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware(hb.AdminToken))
		adminGroup.GET("/workers", hb.Admin.ListWorkersHandler)
		adminGroup.PUT("/workers/:id/verification", hb.Admin.ReviewWorkerHandler)
		adminGroup.PUT("/workers/:id/categories/:category", hb.Admin.ReviewCategoryHandler)
		adminGroup.GET("/workers/:id/documents/:kind", hb.Admin.ReadDocumentHandler)
		adminGroup.GET("/stats", hb.Admin.StatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the health monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Sewa", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWorkerRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
