package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irisops/scanjobd/internal/api/domain"
)

func TestNewFilter(t *testing.T) {
	tests := []struct {
		name   string
		class  domain.StatusClass
		tenant string
		search string
		want   Filter
	}{
		{
			name:  "all imposes no status predicate",
			class: domain.StatusClassAll,
			want:  Filter{},
		},
		{
			name:  "failed sets status predicate",
			class: domain.StatusClassFailed,
			want:  Filter{Status: "failed"},
		},
		{
			name:   "tenant and search carried through",
			class:  domain.StatusClassRunning,
			tenant: "acme",
			search: "example.com",
			want:   Filter{Status: "running", Tenant: "acme", Search: "example.com"},
		},
		{
			name:   "whitespace-only modifiers dropped",
			class:  domain.StatusClassCompleted,
			tenant: "   ",
			search: "\t",
			want:   Filter{Status: "completed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFilter(tt.class, tt.tenant, tt.search))
		})
	}
}

func TestNewPage_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		size     int
		maxSize  int
		wantPage Page
	}{
		{"in range untouched", 3, 25, 1000, Page{3, 25}},
		{"page zero becomes one", 0, 10, 1000, Page{1, 10}},
		{"negative page becomes one", -7, 10, 1000, Page{1, 10}},
		{"size zero becomes one", 1, 0, 1000, Page{1, 1}},
		{"negative size becomes one", 1, -5, 1000, Page{1, 1}},
		{"oversize capped at max", 1, 100000, 1000, Page{1, 1000}},
		{"zero max falls back to default bound", 1, 5000, 0, Page{1, 1000}},
		{"custom max respected", 2, 500, 100, Page{2, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPage, NewPage(tt.number, tt.size, tt.maxSize))
		})
	}
}

func TestPage_OffsetLimit(t *testing.T) {
	p := NewPage(1, 10, 1000)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 10, p.Limit())

	p = NewPage(4, 25, 1000)
	assert.Equal(t, 75, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestParseStatusClass(t *testing.T) {
	for _, valid := range []string{"failed", "completed", "running", "all"} {
		class, err := domain.ParseStatusClass(valid)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusClass(valid), class)
	}

	_, err := domain.ParseStatusClass("pending-ish")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusClass)

	// An unknown class must be rejected, never treated as "all".
	_, err = domain.ParseStatusClass("")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusClass)
}
