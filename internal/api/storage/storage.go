package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/query"
	"github.com/irisops/scanjobd/shared/postgresql"
)

const jobColumns = `
	job_id, tenant_id, domain, status, is_latest, payload,
	error_message, documents_processed, created_at, updated_at, completed_at`

// Storage is the scan_jobs store adapter backed by PostgreSQL.
type Storage struct {
	db *sqlx.DB
	pg *postgresql.Client
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
		pg: pg,
	}
}

// buildWhere translates a planned filter into a WHERE clause with positional
// args. Search terms match as case-insensitive substrings across the
// searchable columns.
func buildWhere(f query.Filter) (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		clause += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}

	if f.Tenant != "" {
		clause += fmt.Sprintf(" AND tenant_id = $%d", argIdx)
		args = append(args, f.Tenant)
		argIdx++
	}

	if f.LatestOnly {
		clause += " AND is_latest = TRUE"
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		parts := make([]string, 0, len(query.SearchFields))
		for _, field := range query.SearchFields {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", field, argIdx))
			args = append(args, pattern)
			argIdx++
		}
		clause += " AND (" + strings.Join(parts, " OR ") + ")"
	}

	return clause, args
}

// escapeLike neutralizes LIKE metacharacters so a search term always matches
// literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountJobs returns the number of jobs matching the filter.
func (s *Storage) CountJobs(ctx context.Context, f query.Filter) (int, error) {
	where, args := buildWhere(f)

	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM scan_jobs"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return count, nil
}

// ListJobs returns one page of jobs matching the filter, ordered by
// created_at descending with job_id as tie-break.
func (s *Storage) ListJobs(ctx context.Context, f query.Filter, p query.Page) ([]model.ScanJob, error) {
	where, args := buildWhere(f)

	q := "SELECT" + jobColumns + " FROM scan_jobs" + where +
		" ORDER BY " + query.OrderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit(), p.Offset())

	jobs := []model.ScanJob{}
	if err := s.db.SelectContext(ctx, &jobs, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetJobByID retrieves a single job. An unknown id yields
// domain.ErrJobNotFound.
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.ScanJob, error) {
	var job model.ScanJob
	err := s.db.GetContext(ctx, &job, "SELECT"+jobColumns+" FROM scan_jobs WHERE job_id = $1", jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJobStatus performs a compare-and-set status transition: the write
// applies only while the job's current status still equals expected. A false
// return without error means the precondition failed (the job already
// transitioned elsewhere).
func (s *Storage) UpdateJobStatus(ctx context.Context, jobID, expected, next string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE scan_jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status = $3
	`, next, jobID, expected)
	if err != nil {
		return false, fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ListTenants returns the distinct tenant ids across all jobs, sorted
// ascending.
func (s *Storage) ListTenants(ctx context.Context) ([]string, error) {
	tenants := []string{}
	err := s.db.SelectContext(ctx, &tenants,
		"SELECT DISTINCT tenant_id FROM scan_jobs ORDER BY tenant_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}

// CountJobsByStatus returns raw per-status counts. Statuses with no jobs are
// absent; the service layer fills in zeros.
func (s *Storage) CountJobsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM scan_jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	return counts, nil
}

// Ping checks store reachability with a real round-trip query.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pg.HealthCheck(ctx)
}
