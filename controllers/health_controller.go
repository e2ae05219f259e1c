package controllers

import (
	"context"
	"net/http"
	"time"

	"querygateapi/config"
	"querygateapi/services/cache"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var healthCache *cache.Manager

// SetHealthCache initializes the cache manager the health checks ping.
func SetHealthCache(m *cache.Manager) {
	healthCache = m
}

// GetHealth reports component health
// @Summary Health check
// @Description Pings the database and the cache store and reports query pool usage
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "All components healthy"
// @Failure 503 {object} map[string]interface{} "One or more components down"
// @Router /health [get]
func getHealth(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := pingDatabase(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := healthCache.Ping(c.Request.Context()); err != nil {
		checks["cache"] = err.Error()
		healthy = false
	} else {
		checks["cache"] = "ok"
	}

	if config.QueryDB != nil {
		stats := config.QueryDB.Stats()
		checks["query_pool"] = gin.H{
			"open":    stats.OpenConnections,
			"in_use":  stats.InUse,
			"idle":    stats.Idle,
			"waiting": stats.WaitCount,
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	utils.JSONResponse(c, status, gin.H{
		"status": overall,
		"checks": checks,
	})
}

// GetReady reports readiness to serve queries
// @Summary Readiness check
// @Description Returns 200 once the database and cache store answer
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /health/ready [get]
func getReady(c *gin.Context) {
	if err := pingDatabase(c.Request.Context()); err != nil {
		utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	if err := healthCache.Ping(c.Request.Context()); err != nil {
		utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ready"})
}

// GetLive reports process liveness
// @Summary Liveness check
// @Description Always returns 200 while the process serves requests
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Alive"
// @Router /health/live [get]
func getLive(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, gin.H{"status": "alive"})
}

func pingDatabase(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return config.QueryDB.PingContext(pingCtx)
}

// RegisterHealthRoutes registers the health endpoints on the root router.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", getHealth)
	r.GET("/health/ready", getReady)
	r.GET("/health/live", getLive)
}
