package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/dto"
	"github.com/irisops/scanjobd/internal/api/service"
)

// intQuery reads an integer query parameter. Missing or malformed values
// fall back to the default; range clamping happens in the query planner.
func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ListJobs handles GET /api/v1/jobs
// Lists scan jobs filtered by status class, tenant and search term.
func (h *JobHandler) ListJobs(c *gin.Context) {
	latestOnly, _ := strconv.ParseBool(c.DefaultQuery("latest", "false"))

	params := service.ListJobsParams{
		StatusClass: c.DefaultQuery("status", string(domain.StatusClassAll)),
		Tenant:      c.Query("tenant"),
		Search:      c.Query("search"),
		LatestOnly:  latestOnly,
		Page:        intQuery(c, "page", 1),
		PageSize:    intQuery(c, "page_size", h.defaultPageSize),
	}

	jobs, total, page, err := h.service.ListJobs(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatusClass) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be one of failed, completed, running, all",
			})
			return
		}
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewJobPage(jobs, total, page))
}

// ListTenants handles GET /api/v1/tenants
// Returns the distinct tenant ids, sorted ascending.
func (h *JobHandler) ListTenants(c *gin.Context) {
	tenants, err := h.service.ListTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tenants", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, tenants)
}

// Stats handles GET /api/v1/stats
// Returns per-status job counts, zeros included.
func (h *JobHandler) Stats(c *gin.Context) {
	counts, err := h.service.CountsByStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// RestartJob handles POST /api/v1/jobs/:job_id/restart
// Resets one failed job back to pending.
func (h *JobHandler) RestartJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id is required",
		})
		return
	}

	outcome, err := h.service.RestartJob(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to restart job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "store unavailable",
		})
		return
	}

	switch {
	case outcome.Success:
		c.JSON(http.StatusOK, outcome)
	case outcome.Reason == domain.RestartReasonNotFound:
		c.JSON(http.StatusNotFound, outcome)
	default:
		// not_failed and concurrent_modification are both conflicts with the
		// job's current state.
		c.JSON(http.StatusConflict, outcome)
	}
}

// RestartAllFailed handles POST /api/v1/restart-all-failed
// Restarts every currently-failed job, optionally scoped to one tenant.
func (h *JobHandler) RestartAllFailed(c *gin.Context) {
	tenant := c.Query("tenant")

	outcomes, summary, err := h.service.RestartAllFailed(c.Request.Context(), tenant)
	if err != nil {
		h.logger.Error("Failed to restart failed jobs",
			slog.String("tenant", tenant),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.RestartAllResponse{
		Summary:  summary,
		Outcomes: outcomes,
	})
}

// Health handles GET /health
// Reports whether the job store is reachable.
func (h *JobHandler) Health(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"store_reachable": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store_reachable": true,
	})
}
