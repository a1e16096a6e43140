package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/biograph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client *biograph.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client *biograph.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "biograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "biograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	allHealthy := true

	if h.client != nil {
		checks["client"] = gin.H{"status": "healthy"}
	} else {
		checks["client"] = gin.H{"status": "unhealthy", "error": "client not initialized"}
		allHealthy = false
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["system"] = gin.H{
		"status":     "healthy",
		"goroutines": runtime.NumGoroutine(),
		"gc_cycles":  m.NumGC,
	}

	response := gin.H{
		"status":    "ready",
		"service":   "biograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}
	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
