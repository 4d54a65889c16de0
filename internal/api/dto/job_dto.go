package dto

import (
	"time"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/query"
)

// JobDTO is the wire shape of one scan job.
type JobDTO struct {
	JobID              string  `json:"job_id"`
	TenantID           string  `json:"tenant_id"`
	Domain             string  `json:"domain"`
	Status             string  `json:"status"`
	IsLatest           bool    `json:"is_latest"`
	ErrorMessage       *string `json:"error_message,omitempty"`
	DocumentsProcessed *int64  `json:"documents_processed,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	CompletedAt        *string `json:"completed_at,omitempty"`
	DurationSeconds    *int64  `json:"duration_seconds,omitempty"`
}

// NewJobDTO shapes one record for the wire, deriving the run duration when
// the job has completed.
func NewJobDTO(job model.ScanJob) JobDTO {
	d := JobDTO{
		JobID:              job.JobID,
		TenantID:           job.TenantID,
		Domain:             job.Domain,
		Status:             job.Status,
		IsLatest:           job.IsLatest,
		ErrorMessage:       job.ErrorMessage,
		DocumentsProcessed: job.DocumentsProcessed,
		CreatedAt:          job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          job.UpdatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format(time.RFC3339)
		d.CompletedAt = &completed
		duration := int64(job.CompletedAt.Sub(job.CreatedAt).Seconds())
		d.DurationSeconds = &duration
	}
	return d
}

// JobPageResponse is the uniform paginated envelope.
type JobPageResponse struct {
	Items    []JobDTO `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Pages    int      `json:"pages"`
}

// NewJobPage assembles the paginated envelope. Pages is the ceiling of
// total/page_size with a floor of one, so an empty result still reports a
// single page.
func NewJobPage(jobs []model.ScanJob, total int, page query.Page) JobPageResponse {
	size := page.Size
	if size < 1 {
		size = 1
	}

	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	items := make([]JobDTO, len(jobs))
	for i, job := range jobs {
		items[i] = NewJobDTO(job)
	}

	return JobPageResponse{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: size,
		Pages:    pages,
	}
}

// RestartAllResponse reports a batch restart: the derived summary plus one
// outcome per attempted job.
type RestartAllResponse struct {
	Summary  domain.RestartSummary   `json:"summary"`
	Outcomes []domain.RestartOutcome `json:"outcomes"`
}
