package query

import (
	"strings"

	"github.com/irisops/scanjobd/internal/api/domain"
)

const (
	// DefaultPageSize is used when a request does not specify page_size
	DefaultPageSize = 10
	// DefaultMaxPageSize bounds page_size when no limit is configured
	DefaultMaxPageSize = 1000
)

// SearchFields are the columns a search term is matched against, as
// case-insensitive substrings.
var SearchFields = []string{"job_id", "tenant_id", "domain", "error_message"}

// Filter is the canonical query built from a status class plus optional
// tenant and search modifiers. An empty Status means no status predicate.
// LatestOnly restricts the result to the newest scan per target, the way the
// records are flagged at write time.
type Filter struct {
	Status     string
	Tenant     string
	Search     string
	LatestOnly bool
}

// NewFilter plans the filter for a listing or batch-restart query. Pure
// function of its inputs.
func NewFilter(class domain.StatusClass, tenant, search string) Filter {
	f := Filter{
		Tenant: strings.TrimSpace(tenant),
		Search: strings.TrimSpace(search),
	}
	if class != domain.StatusClassAll {
		f.Status = string(class)
	}
	return f
}

// Page is a normalized pagination window.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps raw pagination parameters. Out-of-range values are
// normalized, never rejected: page < 1 becomes 1, size < 1 becomes 1 and
// size above maxSize is capped.
func NewPage(number, size, maxSize int) Page {
	if maxSize < 1 {
		maxSize = DefaultMaxPageSize
	}
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of records to skip before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of records on this page.
func (p Page) Limit() int {
	return p.Size
}

// Listing order: newest first, job_id ascending as tie-break so pages stay
// stable across fetches even when created_at timestamps collide.
const OrderBy = "created_at DESC, job_id ASC"
