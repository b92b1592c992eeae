package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.engine.GetJobManager().GetJob(jobID)
	if err != nil {
		SendEngineError(c, "get job", ErrorCodeInternalError, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list the jobs of a catalog
func (api *API) ListJobsHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	statusFilter, result := ValidateJobStatus(c.Query("status"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobs := api.engine.GetJobManager().ListJobs(catalogName, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":         jobs,
		"catalog_name": catalogName,
		"total":        len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.GetJobMetrics())
}
