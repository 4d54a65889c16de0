package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/query"
)

// MemoryStore is an in-memory store adapter with the same contract as the
// PostgreSQL Storage. It backs tests and local development; it is not meant
// for production use.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]model.ScanJob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.ScanJob)}
}

// Put inserts or replaces a job record.
func (m *MemoryStore) Put(job model.ScanJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.JobID] = job
}

func matches(job model.ScanJob, f query.Filter) bool {
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if f.Tenant != "" && job.TenantID != f.Tenant {
		return false
	}
	if f.LatestOnly && !job.IsLatest {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		fields := []string{job.JobID, job.TenantID, job.Domain}
		if job.ErrorMessage != nil {
			fields = append(fields, *job.ErrorMessage)
		}
		found := false
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchSorted returns matching jobs in the canonical listing order:
// created_at descending, job_id ascending as tie-break.
func (m *MemoryStore) matchSorted(f query.Filter) []model.ScanJob {
	out := []model.ScanJob{}
	for _, job := range m.jobs {
		if matches(job, f) {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

// CountJobs returns the number of jobs matching the filter.
func (m *MemoryStore) CountJobs(_ context.Context, f query.Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matchSorted(f)), nil
}

// ListJobs returns one page of jobs matching the filter.
func (m *MemoryStore) ListJobs(_ context.Context, f query.Filter, p query.Page) ([]model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.matchSorted(f)
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// GetJobByID retrieves a single job or domain.ErrJobNotFound.
func (m *MemoryStore) GetJobByID(_ context.Context, jobID string) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

// UpdateJobStatus applies a compare-and-set status transition.
func (m *MemoryStore) UpdateJobStatus(_ context.Context, jobID, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status != expected {
		return false, nil
	}
	job.Status = next
	job.UpdatedAt = time.Now()
	m.jobs[jobID] = job
	return true, nil
}

// ListTenants returns distinct tenant ids sorted ascending.
func (m *MemoryStore) ListTenants(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	tenants := []string{}
	for _, job := range m.jobs {
		if _, ok := seen[job.TenantID]; !ok {
			seen[job.TenantID] = struct{}{}
			tenants = append(tenants, job.TenantID)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}

// CountJobsByStatus returns raw per-status counts, like the SQL GROUP BY.
func (m *MemoryStore) CountJobsByStatus(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, job := range m.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
