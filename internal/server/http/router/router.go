package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/grocerline/basketd/internal/server/http/handlers"
	"github.com/grocerline/basketd/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.GroceryFacade, states handlers.RetryStateSource, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/api/products/stream",
		"/api/basket/stream",
		"/api/basket/detail/stream",
		"/api/sync/retries",
	})))

	productHandler := handlers.NewProductHandler(facade)
	basketHandler := handlers.NewBasketHandler(facade)
	syncHandler := handlers.NewSyncHandler(facade, states)

	api := engine.Group("/api")
	api.GET("/products", productHandler.List)
	api.GET("/products/stream", productHandler.ListStream)
	api.GET("/products/:id", productHandler.Get)
	api.GET("/products/:id/stream", productHandler.GetStream)

	api.GET("/basket", basketHandler.Snapshot)
	api.GET("/basket/stream", basketHandler.SnapshotStream)
	api.GET("/basket/detail", basketHandler.Detail)
	api.GET("/basket/detail/stream", basketHandler.DetailStream)
	api.DELETE("/basket", basketHandler.Clear)
	api.POST("/items", basketHandler.UpdateItem)

	api.POST("/sync", syncHandler.Trigger)
	api.GET("/sync/status", syncHandler.Status)
	api.GET("/sync/retries", syncHandler.RetryStream)

	api.GET("/health", func(c *gin.Context) {
		if err := facade.HealthCheck(c.Request.Context()); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})

	return engine
}
