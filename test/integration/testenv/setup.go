package testenv

import (
	"github.com/gin-gonic/gin"

	"github.com/ledgerbank/transfer-engine/internal/api/middleware"
	"github.com/ledgerbank/transfer-engine/internal/api/routes"
)

// SetupTestRouter builds a gin router wired against container, with the
// same middleware and routes as the production composition root.
func SetupTestRouter(container *TestContainer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(container.Config))
	router.Use(middleware.RateLimit(container.Config))

	routes.RegisterRoutes(router, container)
	return router
}
