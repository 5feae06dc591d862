package http

import (
	"github.com/gin-gonic/gin"
	"github.com/partsmarket/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(handler.RequireCatalog())
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
			products.GET("/:id/fitment", handler.GetProductFitment)
			products.PUT("/:id", handler.UpsertProduct)
			products.DELETE("/:id", handler.DeleteProduct)
		}

		fitment := v1.Group("/fitment")
		{
			fitment.GET("/options", handler.GetFitmentOptions)
			fitment.GET("/brands/suggest", handler.SuggestBrands)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.POST("/reload", handler.ReloadCatalog)
			catalog.POST("/sync", handler.SyncCatalog)
		}
	}

	return router
}
