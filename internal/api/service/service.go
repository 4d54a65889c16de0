package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/query"
)

// Store is the document-store capability the service depends on. All shared
// mutable state lives behind it; the service itself is stateless.
type Store interface {
	CountJobs(ctx context.Context, f query.Filter) (int, error)
	ListJobs(ctx context.Context, f query.Filter, p query.Page) ([]model.ScanJob, error)
	GetJobByID(ctx context.Context, jobID string) (*model.ScanJob, error)
	UpdateJobStatus(ctx context.Context, jobID, expected, next string) (bool, error)
	ListTenants(ctx context.Context) ([]string, error)
	CountJobsByStatus(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
}

// Publisher announces restart events to the scan executor. Publishing is
// best-effort; the executor also polls the store for pending jobs.
type Publisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

const defaultRestartConcurrency = 4

// Config holds service dependencies and tuning.
type Config struct {
	Logger             *slog.Logger
	Store              Store
	Publisher          Publisher
	MaxPageSize        int
	RestartConcurrency int
}

// Service implements job listing, statistics and restart orchestration.
type Service struct {
	logger             *slog.Logger
	store              Store
	publisher          Publisher
	maxPageSize        int
	restartConcurrency int
}

// New creates a Service. Publisher may be nil, in which case restart events
// are not announced.
func New(cfg *Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxPageSize := cfg.MaxPageSize
	if maxPageSize < 1 {
		maxPageSize = query.DefaultMaxPageSize
	}

	concurrency := cfg.RestartConcurrency
	if concurrency < 1 {
		concurrency = defaultRestartConcurrency
	}

	return &Service{
		logger:             logger,
		store:              cfg.Store,
		publisher:          cfg.Publisher,
		maxPageSize:        maxPageSize,
		restartConcurrency: concurrency,
	}
}

// ListJobsParams carries the raw listing request. Page and PageSize are
// normalized, never rejected; StatusClass must be one of
// failed/completed/running/all.
type ListJobsParams struct {
	StatusClass string
	Tenant      string
	Search      string
	LatestOnly  bool
	Page        int
	PageSize    int
}

// ListJobs returns one page of jobs plus the total match count and the
// normalized page window.
func (s *Service) ListJobs(ctx context.Context, p ListJobsParams) ([]model.ScanJob, int, query.Page, error) {
	class, err := domain.ParseStatusClass(p.StatusClass)
	if err != nil {
		return nil, 0, query.Page{}, err
	}

	filter := query.NewFilter(class, p.Tenant, p.Search)
	filter.LatestOnly = p.LatestOnly
	page := query.NewPage(p.Page, p.PageSize, s.maxPageSize)

	total, err := s.store.CountJobs(ctx, filter)
	if err != nil {
		return nil, 0, query.Page{}, fmt.Errorf("failed to count jobs: %w", err)
	}

	jobs, err := s.store.ListJobs(ctx, filter, page)
	if err != nil {
		return nil, 0, query.Page{}, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, page, nil
}

// ListTenants returns distinct tenant ids sorted ascending.
func (s *Service) ListTenants(ctx context.Context) ([]string, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// CountsByStatus returns per-status job counts covering every status, with
// explicit zeros for statuses that have no jobs.
func (s *Service) CountsByStatus(ctx context.Context) (map[string]int, error) {
	raw, err := s.store.CountJobsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}

	counts := make(map[string]int, len(domain.JobStatuses))
	for _, status := range domain.JobStatuses {
		counts[status] = raw[status]
	}
	return counts, nil
}

// Health reports store reachability.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}
