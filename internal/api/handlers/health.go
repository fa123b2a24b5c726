package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoopsight/hoopsight/internal/services"
)

type HealthHandler struct {
	cache *services.CacheService
}

func NewHealthHandler(cache *services.CacheService) *HealthHandler {
	return &HealthHandler{
		cache: cache,
	}
}

// GetHealth returns basic health status - always returns 200 if the
// server is running. Used for liveness probes.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "hoopsight",
	})
}

// GetReady returns readiness status - 200 only when the cache is
// reachable. Used for readiness probes.
func (h *HealthHandler) GetReady(c *gin.Context) {
	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "cache unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
