package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/collectique/backend/internal/api/handlers"
	"github.com/collectique/backend/internal/config"
	"github.com/collectique/backend/internal/database"
	"github.com/collectique/backend/internal/services"
)

func SetupRouter(cfg *config.Config, itemStore *database.ItemStore, priceManager *services.PriceManager, refreshWorker *services.RefreshWorker, snapshotService *services.SnapshotService) *gin.Engine {
	router := gin.Default()

	// CORS configuration for the mobile/web clients
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"}
	corsConfig.AllowCredentials = false // Explicitly set
	router.Use(cors.New(corsConfig))

	// Initialize handlers
	collectionHandler := handlers.NewCollectionHandler(itemStore, snapshotService)
	priceHandler := handlers.NewPriceHandler(priceManager, itemStore, refreshWorker)

	// API routes
	api := router.Group("/api")
	{
		// Item routes
		items := api.Group("/items")
		{
			items.POST("/:id/refresh-price", priceHandler.RefreshItemPrice)
			items.GET("/:id/trend", priceHandler.GetItemTrend)
			items.GET("/:id/performance", priceHandler.GetItemPerformance)
		}

		// Collection routes
		collections := api.Group("/collections")
		{
			collections.GET("/:id/items", collectionHandler.GetItems)
			collections.GET("/:id/stats", collectionHandler.GetStats)
			collections.GET("/:id/value-history", collectionHandler.GetValueHistory)
			collections.POST("/:id/refresh-prices", priceHandler.RefreshCollectionPrices)
		}

		// Price routes
		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
