package domain

// Restart outcome reasons. NotFound and the two precondition failures are
// expected results of normal operation and travel as values, not errors.
const (
	RestartReasonNotFound               = "not_found"
	RestartReasonNotFailed              = "not_failed"
	RestartReasonConcurrentModification = "concurrent_modification"
	RestartReasonStoreError             = "store_error"
)

// RestartOutcome reports one restart attempt. A batch produces an ordered
// sequence of these, never a single pass/fail flag.
type RestartOutcome struct {
	JobID   string `json:"job_id"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// RestartSummary aggregates a batch of outcomes.
type RestartSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
