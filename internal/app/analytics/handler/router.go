package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewlens/internal/app/analytics/util"
	"reviewlens/pkg/logger"
	"reviewlens/pkg/metrics"
)

// SetupRoutes настраивает все маршруты сервиса с использованием Gin.
// Все /api маршруты требуют Bearer JWT, управление кешем - дополнительно
// роль manager или admin. Публичны только /health и /metrics.
func SetupRoutes(
	analyticsHandler *AnalyticsHandler,
	reviewHandler *ReviewHandler,
	productHandler *ProductHandler,
	authMiddleware *AuthMiddleware,
	cache util.CacheStore,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("reviewlens"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviewlens",
			"cache":   cache.Healthy(c.Request.Context()),
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(authMiddleware.Authenticate())
	{
		// Графики дашборда
		api.GET("/trends/sentiment-over-time", analyticsHandler.GetSentimentOverTime)
		api.GET("/distributions/sentiment", analyticsHandler.GetDistribution)
		api.GET("/products/timeline-comparison", analyticsHandler.GetTimelineComparison)
		api.GET("/date-range", analyticsHandler.GetDateRange)

		// Каталог для выпадающих списков
		api.GET("/products", productHandler.GetAllProducts)
		api.GET("/products/:product_id", productHandler.GetProduct)

		// Прием отзывов
		api.POST("/reviews", reviewHandler.CreateReview)

		// Управление кешем - только manager и admin
		cacheGroup := api.Group("/cache")
		cacheGroup.Use(authMiddleware.RequireRole("manager", "admin"))
		{
			cacheGroup.POST("/warm/:product_id", analyticsHandler.WarmCache)
			cacheGroup.DELETE("/product/:product_id", analyticsHandler.InvalidateCache)
			cacheGroup.GET("/stats", analyticsHandler.GetCacheStats)
		}
	}

	return router
}
