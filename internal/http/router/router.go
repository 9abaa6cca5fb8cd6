package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/config"
	"github.com/juajobs/juajobs-backend/internal/http/handlers"
	"github.com/juajobs/juajobs-backend/internal/http/middleware"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// SetupRouter wires all routes. Catalog and job reads are public, the
// provider callback authenticates by signature, everything else requires
// a Bearer token. Admin routes additionally require the admin role.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	catalogHandler *handlers.CatalogHandler,
	jobHandler *handlers.JobHandler,
	applicationHandler *handlers.ApplicationHandler,
	paymentHandler *handlers.PaymentHandler,
	reviewHandler *handlers.ReviewHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Public reads.
	api.GET("/ws", wsHandler.Handle)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Get)
	api.GET("/jobs/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListForJob)
	api.GET("/workers", userHandler.ListWorkers)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListForUser)
	api.GET("/users/:id/rating", middleware.UUIDValidator("id"), reviewHandler.Stats)
	api.GET("/users/:id/stats", middleware.UUIDValidator("id"), userHandler.GetStats)
	api.GET("/users/:id/skills", middleware.UUIDValidator("id"), userHandler.ListSkills)
	api.GET("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.Get)
	api.GET("/locations", catalogHandler.ListLocations)
	api.GET("/locations/tree", catalogHandler.LocationTree)
	api.GET("/locations/:id", middleware.UUIDValidator("id"), catalogHandler.GetLocation)
	api.GET("/skills", catalogHandler.ListSkills)
	api.GET("/skills/:id", middleware.UUIDValidator("id"), catalogHandler.GetSkill)
	api.GET("/categories", catalogHandler.ListCategories)

	// The provider posts charge results here, authenticated by the HMAC
	// signature over the body.
	api.POST("/payments/callback", paymentHandler.Callback)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/users/me", userHandler.Me)
		protected.PATCH("/users/me", userHandler.UpdateMe)
		protected.POST("/users/me/photo", userHandler.UploadPhoto)
		protected.POST("/users/me/skills", userHandler.AddSkill)
		protected.PATCH("/users/me/skills/:id", middleware.UUIDValidator("id"), userHandler.UpdateSkill)
		protected.DELETE("/users/me/skills/:id", middleware.UUIDValidator("id"), userHandler.RemoveSkill)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), userHandler.GetUser)

		protected.POST("/jobs", jobHandler.Create)
		protected.PUT("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Update)
		protected.POST("/jobs/:id/cancel", middleware.UUIDValidator("id"), jobHandler.Cancel)
		protected.POST("/jobs/:id/complete", middleware.UUIDValidator("id"), jobHandler.Complete)
		protected.GET("/jobs/:id/applications", middleware.UUIDValidator("id"), jobHandler.ListApplications)

		protected.POST("/applications", applicationHandler.Apply)
		protected.GET("/applications/mine", applicationHandler.ListMine)
		protected.GET("/applications/:id", middleware.UUIDValidator("id"), applicationHandler.Get)
		protected.POST("/applications/:id/respond", middleware.UUIDValidator("id"), applicationHandler.Respond)
		protected.POST("/applications/:id/withdraw", middleware.UUIDValidator("id"), applicationHandler.Withdraw)

		protected.GET("/payments/mine", paymentHandler.ListMine)
		protected.GET("/payments/:id", middleware.UUIDValidator("id"), paymentHandler.Get)
		protected.POST("/payments/:id/initiate", middleware.UUIDValidator("id"), paymentHandler.Initiate)
		protected.PATCH("/payments/:id/status", middleware.UUIDValidator("id"), paymentHandler.UpdateStatus)

		protected.POST("/reviews", reviewHandler.Create)
		protected.POST("/reviews/:id/respond", middleware.UUIDValidator("id"), reviewHandler.Respond)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(authz.RoleAdmin))
	{
		admin.PATCH("/users/:id/verify", middleware.UUIDValidator("id"), userHandler.Verify)
		admin.PATCH("/users/:id/active", middleware.UUIDValidator("id"), userHandler.SetActive)

		admin.POST("/locations", catalogHandler.CreateLocation)
		admin.PUT("/locations/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateLocation)
		admin.DELETE("/locations/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteLocation)

		admin.POST("/skills", catalogHandler.CreateSkill)
		admin.PUT("/skills/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateSkill)
		admin.DELETE("/skills/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteSkill)

		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteCategory)

		admin.POST("/payments/:id/refund", middleware.UUIDValidator("id"), paymentHandler.Refund)
	}

	return r
}
