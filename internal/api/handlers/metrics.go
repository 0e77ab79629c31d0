package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	metrics "github.com/ledgerbank/transfer-engine/internal/pkg/telemetry"
)

var startTime = time.Now()

// GetMetrics returns the collected request metrics as JSON (teacher's
// legacy in-process list, kept alongside the Prometheus registry).
func GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.List())
}

// GetPrometheusMetrics exposes metrics in Prometheus exposition format.
func GetPrometheusMetrics(c *gin.Context) {
	metrics.UpdateSystemMetrics()
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports whether the service is ready to serve traffic.
func Health(container HandlerDependencies) gin.HandlerFunc {
	store := container.GetStore()
	return func(c *gin.Context) {
		if err := store.Pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(startTime).String()})
	}
}
