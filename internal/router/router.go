package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lokal-app/lokal-backend/config"
	"github.com/lokal-app/lokal-backend/internal/app/controller"
	"github.com/lokal-app/lokal-backend/internal/middleware"
	"github.com/lokal-app/lokal-backend/internal/observability"
)

type Router struct {
	businessController   *controller.BusinessController
	onboardingController *controller.OnboardingController
	uploadController     *controller.UploadController
	httpMetrics          *observability.HTTPMetrics
	config               *config.Config
}

func NewRouter(
	businessController *controller.BusinessController,
	onboardingController *controller.OnboardingController,
	uploadController *controller.UploadController,
	httpMetrics *observability.HTTPMetrics,
	cfg *config.Config,
) *Router {
	return &Router{
		businessController:   businessController,
		onboardingController: onboardingController,
		uploadController:     uploadController,
		httpMetrics:          httpMetrics,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	if r.httpMetrics != nil {
		router.Use(r.httpMetrics.Middleware())
		router.GET("/metrics", gin.WrapH(r.httpMetrics.Handler()))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Business API is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/categories", r.businessController.ListCategories)
	router.GET("/features", r.businessController.ListFeatures)

	businesses := router.Group("/businesses")
	{
		businesses.GET("", r.businessController.GetBusinesses)
		businesses.POST("/identity", r.onboardingController.CreateIdentity)
		businesses.POST("/bulk-import", r.onboardingController.BulkImport)

		businesses.GET("/:id", r.businessController.GetBusiness)
		businesses.POST("/:id/location", r.onboardingController.AddLocation)
		businesses.POST("/:id/opening-hours", r.onboardingController.SetOpeningHours)
		businesses.POST("/:id/social-links", r.onboardingController.UpsertSocialLinks)
		businesses.POST("/:id/logo", r.onboardingController.UpsertLogo)
		businesses.POST("/:id/features", r.onboardingController.AddFeatureProposals)
		if r.uploadController != nil {
			businesses.POST("/:id/logo/presigned-url", r.uploadController.PresignLogoUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	return cors.New(cfg)
}
