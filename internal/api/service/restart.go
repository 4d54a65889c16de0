package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/query"
)

// RestartJob resets one failed job back to pending. Not-found and
// precondition failures are reported as outcome values; only store failures
// surface as errors.
func (s *Service) RestartJob(ctx context.Context, jobID string) (domain.RestartOutcome, error) {
	job, err := s.store.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return domain.RestartOutcome{
				JobID:  jobID,
				Reason: domain.RestartReasonNotFound,
			}, nil
		}
		return domain.RestartOutcome{}, fmt.Errorf("failed to fetch job for restart: %w", err)
	}

	if job.Status != domain.JobStatusFailed {
		return domain.RestartOutcome{
			JobID:  jobID,
			Reason: domain.RestartReasonNotFailed,
		}, nil
	}

	applied, err := s.store.UpdateJobStatus(ctx, jobID, domain.JobStatusFailed, domain.JobStatusPending)
	if err != nil {
		return domain.RestartOutcome{}, fmt.Errorf("failed to update job status: %w", err)
	}
	if !applied {
		// Lost the race: the job transitioned between the read and the
		// conditional write.
		return domain.RestartOutcome{
			JobID:  jobID,
			Reason: domain.RestartReasonConcurrentModification,
		}, nil
	}

	s.logger.Info("Job restarted",
		slog.String("job_id", jobID),
		slog.String("tenant_id", job.TenantID),
	)

	s.publishRestartEvent(ctx, job)

	return domain.RestartOutcome{JobID: jobID, Success: true}, nil
}

// RestartAllFailed restarts every currently-failed job, optionally scoped to
// one tenant. The batch is not atomic: each target goes through the
// single-job path independently and every outcome is reported, in the same
// deterministic order the listing sort produces.
func (s *Service) RestartAllFailed(ctx context.Context, tenant string) ([]domain.RestartOutcome, domain.RestartSummary, error) {
	filter := query.NewFilter(domain.StatusClassFailed, tenant, "")

	total, err := s.store.CountJobs(ctx, filter)
	if err != nil {
		return nil, domain.RestartSummary{}, fmt.Errorf("failed to count failed jobs: %w", err)
	}
	if total == 0 {
		return []domain.RestartOutcome{}, domain.RestartSummary{}, nil
	}

	// Best-effort snapshot of the target set, in listing order.
	snapshot, err := s.store.ListJobs(ctx, filter, query.Page{Number: 1, Size: total})
	if err != nil {
		return nil, domain.RestartSummary{}, fmt.Errorf("failed to snapshot failed jobs: %w", err)
	}

	// One attempt per job_id even if the snapshot carries duplicates.
	seen := make(map[string]struct{}, len(snapshot))
	targets := make([]string, 0, len(snapshot))
	for _, job := range snapshot {
		if _, ok := seen[job.JobID]; ok {
			continue
		}
		seen[job.JobID] = struct{}{}
		targets = append(targets, job.JobID)
	}

	outcomes := make([]domain.RestartOutcome, len(targets))

	// Bounded fan-out; results are index-addressed so the output order stays
	// the snapshot order regardless of goroutine scheduling.
	sem := make(chan struct{}, s.restartConcurrency)
	var wg sync.WaitGroup
	for i, jobID := range targets {
		wg.Add(1)
		go func(i int, jobID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome, err := s.RestartJob(ctx, jobID)
			if err != nil {
				// A store failure on one job must not abort the rest of the
				// batch.
				s.logger.Error("Restart failed",
					slog.String("job_id", jobID),
					slog.Any("error", err),
				)
				outcome = domain.RestartOutcome{
					JobID:  jobID,
					Reason: domain.RestartReasonStoreError,
				}
			}
			outcomes[i] = outcome
		}(i, jobID)
	}
	wg.Wait()

	summary := domain.RestartSummary{Attempted: len(outcomes)}
	for _, outcome := range outcomes {
		if outcome.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	s.logger.Info("Batch restart finished",
		slog.String("tenant", tenant),
		slog.Int("attempted", summary.Attempted),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
	)

	return outcomes, summary, nil
}

// restartEvent is the message published after a successful restart so the
// executor can pick the job up without waiting for its next poll.
type restartEvent struct {
	JobID       string    `json:"job_id"`
	TenantID    string    `json:"tenant_id"`
	Domain      string    `json:"domain"`
	RestartedAt time.Time `json:"restarted_at"`
}

func (s *Service) publishRestartEvent(ctx context.Context, job *model.ScanJob) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(restartEvent{
		JobID:       job.JobID,
		TenantID:    job.TenantID,
		Domain:      job.Domain,
		RestartedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to marshal restart event",
			slog.String("job_id", job.JobID),
			slog.Any("error", err),
		)
		return
	}

	// Best effort: the restart already committed, the executor polls the
	// store regardless.
	if err := s.publisher.Publish(ctx, body, "application/json"); err != nil {
		s.logger.Warn("Failed to publish restart event",
			slog.String("job_id", job.JobID),
			slog.Any("error", err),
		)
	}
}
