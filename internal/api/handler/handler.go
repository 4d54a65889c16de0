package handler

import (
	"log/slog"

	"github.com/irisops/scanjobd/internal/api/query"
	"github.com/irisops/scanjobd/internal/api/service"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger          *slog.Logger
	Service         *service.Service
	DefaultPageSize int
}

// JobHandler handles scan-job HTTP requests
type JobHandler struct {
	logger          *slog.Logger
	service         *service.Service
	defaultPageSize int
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	defaultPageSize := deps.DefaultPageSize
	if defaultPageSize < 1 {
		defaultPageSize = query.DefaultPageSize
	}

	return &JobHandler{
		logger:          deps.Logger,
		service:         deps.Service,
		defaultPageSize: defaultPageSize,
	}
}
