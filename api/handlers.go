package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/promo-search-engine/internal/logging"
	"github.com/gcbaptista/promo-search-engine/internal/metrics"
	"github.com/gcbaptista/promo-search-engine/services"
)

// Dependencies are the collaborators served by the HTTP API. Only Searcher
// is required; routes backed by a nil dependency are not mounted.
type Dependencies struct {
	Searcher  services.PromotionSearcher
	Refresher services.Refresher
	Jobs      services.JobManager
	Analytics services.AnalyticsReporter
	LINE      http.Handler
}

// API holds dependencies for API handlers.
type API struct {
	searcher  services.PromotionSearcher
	refresher services.Refresher
	jobs      services.JobManager
	analytics services.AnalyticsReporter
	line      http.Handler
}

// NewAPI creates a new API handler structure.
func NewAPI(deps Dependencies) (*API, error) {
	if deps.Searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	return &API{
		searcher:  deps.Searcher,
		refresher: deps.Refresher,
		jobs:      deps.Jobs,
		analytics: deps.Analytics,
		line:      deps.LINE,
	}, nil
}

// NewRouter creates a gin engine with the standard middleware chain and all routes.
func NewRouter(deps Dependencies, maxRequestSize int64) (*gin.Engine, error) {
	router := gin.New()
	router.Use(
		logging.GinLogrusRecovery(),
		logging.GinLogrusLogger(),
		metrics.GinMiddleware(),
		RequestSizeLimitMiddleware(maxRequestSize),
		CORSMiddleware(),
	)
	if err := SetupRoutes(router, deps); err != nil {
		return nil, err
	}
	return router, nil
}

// SetupRoutes defines all the API routes for the promotion search service.
func SetupRoutes(router *gin.Engine, deps Dependencies) error {
	apiHandler, err := NewAPI(deps)
	if err != nil {
		return err
	}

	// Probes
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", metrics.Handler())

	// Per-user paginated search
	router.POST("/sessions/:userID/search", apiHandler.SessionSearchHandler)

	// Stateless catalogue and lookups
	promoRoutes := router.Group("/promotions")
	{
		promoRoutes.GET("/search", apiHandler.CatalogueSearchHandler)
		promoRoutes.GET("/latest", apiHandler.LatestPromotionsHandler)
		promoRoutes.GET("/:id", apiHandler.GetPromotionHandler)
	}
	router.GET("/view/:id", apiHandler.ViewPromotionHandler)

	if apiHandler.analytics != nil {
		router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	}

	if apiHandler.jobs != nil {
		jobRoutes := router.Group("/jobs")
		{
			jobRoutes.GET("", apiHandler.ListJobsHandler)
			jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
			jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		}
	}
	if apiHandler.jobs != nil || apiHandler.refresher != nil {
		router.POST("/admin/reload", apiHandler.ReloadHandler)
	}

	if apiHandler.line != nil {
		router.POST("/callback", gin.WrapH(apiHandler.line))
	}

	return nil
}
