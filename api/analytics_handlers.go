package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/promo-search-engine/internal/logging"
)

// GetAnalyticsHandler handles the request to get analytics data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.analytics.GetDashboardData())
}

// HealthCheckHandler reports liveness and the loaded collection. The status
// is "degraded" until a collection has been loaded.
func (api *API) HealthCheckHandler(c *gin.Context) {
	logging.SkipGinRequestLogging(c)

	info := api.searcher.Info()
	status := "healthy"
	if !info.Loaded {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    "promo-search-engine",
		"collection": info,
		"timestamp":  fmt.Sprintf("%d", time.Now().Unix()),
	})
}
