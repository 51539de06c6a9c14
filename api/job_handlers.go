package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/jobs"
	"github.com/gcbaptista/promo-search-engine/model"
)

// jobMetrics is implemented by job managers that expose execution statistics
type jobMetrics interface {
	Stats() jobs.StatsData
	SuccessRate() float64
	Running() int
}

// ReloadHandler starts a background job that re-reads the data source.
// Without a job manager the reload runs inline and its result is returned.
func (api *API) ReloadHandler(c *gin.Context) {
	if api.refresher == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeReloadNotSupported, "No data source is configured for reloads")
		return
	}
	if api.jobs == nil {
		api.reloadNow(c)
		return
	}

	jobID := api.jobs.CreateJob(model.JobTypeReload, map[string]string{
		"trigger": "api",
	})
	if err := api.jobs.ExecuteJob(jobID, api.reloadJob); err != nil {
		SendJobExecutionError(c, "reload", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Collection reload started",
		"job_id":  jobID,
	})
}

func (api *API) reloadNow(c *gin.Context) {
	n, err := api.refresher.Refresh(c.Request.Context())
	if err != nil {
		SendReloadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "completed",
		"message": "Collection reloaded",
		"records": n,
	})
}

func (api *API) reloadJob(ctx context.Context, job *model.Job) error {
	n, err := api.refresher.Refresh(ctx)
	if err != nil {
		return err
	}
	api.jobs.SetJobMetadata(job.ID, "records", strconv.Itoa(n))
	return nil
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendInternalError(c, "job lookup", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, newest first. Query: status (optional)
func (api *API) ListJobsHandler(c *gin.Context) {
	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	list := api.jobs.ListJobs(statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  list,
		"total": len(list),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	m, ok := api.jobs.(jobMetrics)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Job metrics not supported by this job manager"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":          m.Stats(),
		"success_rate":     m.SuccessRate(),
		"current_workload": m.Running(),
	})
}
