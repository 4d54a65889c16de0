package router

import (
	"github.com/gin-gonic/gin"

	"github.com/irisops/scanjobd/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	jobHandler := handler.NewJobHandler(deps)

	r.GET("/health", jobHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// GET /api/v1/jobs - list jobs by status class with tenant/search
		// filters and pagination
		v1.GET("/jobs", jobHandler.ListJobs)

		// POST /api/v1/jobs/:job_id/restart - restart one failed job
		v1.POST("/jobs/:job_id/restart", jobHandler.RestartJob)

		// POST /api/v1/restart-all-failed - batch restart, optionally
		// tenant-scoped
		v1.POST("/restart-all-failed", jobHandler.RestartAllFailed)

		// GET /api/v1/tenants - distinct tenant ids
		v1.GET("/tenants", jobHandler.ListTenants)

		// GET /api/v1/stats - per-status job counts
		v1.GET("/stats", jobHandler.Stats)
	}

	return r
}
