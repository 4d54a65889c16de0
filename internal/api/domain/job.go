package domain

import "fmt"

// Job status constants as persisted in the scan_jobs table. The executor
// owns every transition except failed -> pending, which belongs to the
// restart path.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobStatuses enumerates every status in lifecycle order. Stats responses
// cover all of them even when a count is zero.
var JobStatuses = []string{
	JobStatusPending,
	JobStatusRunning,
	JobStatusCompleted,
	JobStatusFailed,
}

// StatusClass is the coarse listing bucket. "all" imposes no status filter.
type StatusClass string

const (
	StatusClassFailed    StatusClass = "failed"
	StatusClassCompleted StatusClass = "completed"
	StatusClassRunning   StatusClass = "running"
	StatusClassAll       StatusClass = "all"
)

// ParseStatusClass validates a raw status class. An unrecognized value is an
// error, never a silent fallback to "all".
func ParseStatusClass(s string) (StatusClass, error) {
	switch StatusClass(s) {
	case StatusClassFailed, StatusClassCompleted, StatusClassRunning, StatusClassAll:
		return StatusClass(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatusClass, s)
	}
}
