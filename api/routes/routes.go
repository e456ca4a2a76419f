package routes

import (
	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/handlers"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/middleware"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds the handlers the router mounts
type HandlerDependencies struct {
	HealthHandler    *handlers.HealthHandler
	CouponHandler    *handlers.CouponHandler
	SelectionHandler *handlers.SelectionHandler
	AwardHandler     *handlers.AwardHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.HealthHandler.Health)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		// Called by the donation flow once a donation completes
		protected.POST("/coupons/issue", middleware.RequireRole(models.RoleAdmin, models.RoleSystem), deps.CouponHandler.Issue)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		superPassword := middleware.SuperPasswordMiddleware(cfg)

		coupons := admin.Group("/coupons")
		{
			coupons.GET("", deps.CouponHandler.List)
			coupons.GET("/stats", deps.CouponHandler.Stats)
			coupons.GET("/code/:code", deps.CouponHandler.GetByCode)
			coupons.GET("/:id", deps.CouponHandler.Get)
			coupons.POST("/sweep", deps.CouponHandler.Sweep)
			coupons.POST("/draw", deps.SelectionHandler.DrawRandom)
			coupons.POST("/:id/resend-email", deps.CouponHandler.ResendEmail)
			coupons.DELETE("/:id", superPassword, deps.CouponHandler.Delete)
		}

		fundraisers := admin.Group("/fundraisers")
		{
			fundraisers.GET("/:id/donor-pool", deps.SelectionHandler.DonorPool)
			fundraisers.POST("/:id/draw", deps.SelectionHandler.DrawWeighted)
		}

		awards := admin.Group("/awards")
		{
			awards.POST("", deps.AwardHandler.Announce)
			awards.GET("", deps.AwardHandler.List)
			awards.GET("/:id", deps.AwardHandler.Get)
			awards.DELETE("/:id", superPassword, deps.AwardHandler.Delete)
		}
	}

	return router
}
