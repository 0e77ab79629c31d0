package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ledgerbank/transfer-engine/internal/api/handlers"
	"github.com/ledgerbank/transfer-engine/internal/api/middleware"
)

// RegisterRoutes registers all routes with the container dependencies.
func RegisterRoutes(router *gin.Engine, container handlers.HandlerDependencies) {
	router.Use(middleware.Metrics())
	router.Use(middleware.PrometheusMiddleware())

	router.POST("/transfers", handlers.MakeTransferHandler(container))

	router.POST("/accounts", handlers.MakeCreateAccountHandler(container))
	router.GET("/accounts/:id", handlers.MakeGetAccountHandler(container))
	router.POST("/accounts/:id/freeze", handlers.MakeFreezeAccountHandler(container))
	router.POST("/accounts/:id/unfreeze", handlers.MakeUnfreezeAccountHandler(container))

	router.GET("/healthz", handlers.Health(container))
	router.GET("/metrics", handlers.GetPrometheusMetrics)
	router.GET("/metrics.json", handlers.GetMetrics)
}
