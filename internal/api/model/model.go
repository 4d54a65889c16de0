package model

import "time"

// ScanJob mirrors one record in the scan_jobs collection. The payload is an
// opaque blob owned by the executor; this service never interprets it.
type ScanJob struct {
	JobID              string     `db:"job_id"`
	TenantID           string     `db:"tenant_id"`
	Domain             string     `db:"domain"`
	Status             string     `db:"status"`
	IsLatest           bool       `db:"is_latest"`
	Payload            string     `db:"payload"`
	ErrorMessage       *string    `db:"error_message"`
	DocumentsProcessed *int64     `db:"documents_processed"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	CompletedAt        *time.Time `db:"completed_at"`
}
