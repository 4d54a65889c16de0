package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irisops/scanjobd/internal/api/domain"
	"github.com/irisops/scanjobd/internal/api/dto"
	"github.com/irisops/scanjobd/internal/api/handler"
	"github.com/irisops/scanjobd/internal/api/model"
	"github.com/irisops/scanjobd/internal/api/service"
	"github.com/irisops/scanjobd/internal/api/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(store *storage.MemoryStore) *gin.Engine {
	logger := slog.New(slog.DiscardHandler)

	svc := service.New(&service.Config{
		Logger: logger,
		Store:  store,
	})

	deps := &handler.Dependencies{
		Logger:  logger,
		Service: svc,
	}
	h := handler.NewJobHandler(deps)

	r := gin.New()
	r.GET("/health", h.Health)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/jobs", h.ListJobs)
		v1.POST("/jobs/:job_id/restart", h.RestartJob)
		v1.POST("/restart-all-failed", h.RestartAllFailed)
		v1.GET("/tenants", h.ListTenants)
		v1.GET("/stats", h.Stats)
	}
	return r
}

func seedJob(store *storage.MemoryStore, jobID, tenant, status string, createdAt time.Time) {
	store.Put(model.ScanJob{
		JobID:     jobID,
		TenantID:  tenant,
		Domain:    tenant + ".example.com",
		Status:    status,
		IsLatest:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

func doRequest(t *testing.T, r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequestWithContext(t.Context(), method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListJobs(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "job-1", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-2", "acme", domain.JobStatusCompleted, base.Add(time.Minute))
	seedJob(store, "job-3", "globex", domain.JobStatusFailed, base.Add(2*time.Minute))
	r := newTestRouter(store)

	t.Run("default returns all jobs newest first", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/v1/jobs")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.JobPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, resp.Pages)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, "job-3", resp.Items[0].JobID)
		assert.Equal(t, "job-2", resp.Items[1].JobID)
		assert.Equal(t, "job-1", resp.Items[2].JobID)
	})

	t.Run("status and tenant filters combine", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/v1/jobs?status=failed&tenant=acme")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.JobPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "job-1", resp.Items[0].JobID)
	})

	t.Run("latest flag hides superseded runs", func(t *testing.T) {
		store := storage.NewMemoryStore()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		seedJob(store, "job-new", "acme", domain.JobStatusFailed, base)
		store.Put(model.ScanJob{
			JobID:     "job-old",
			TenantID:  "acme",
			Domain:    "acme.example.com",
			Status:    domain.JobStatusFailed,
			IsLatest:  false,
			CreatedAt: base.Add(-time.Hour),
			UpdatedAt: base.Add(-time.Hour),
		})

		w := doRequest(t, newTestRouter(store), http.MethodGet, "/api/v1/jobs?latest=true")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.JobPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "job-new", resp.Items[0].JobID)
	})

	t.Run("unknown status class is rejected", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/v1/jobs?status=exploded")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed paging params are normalized not rejected", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/v1/jobs?page=banana&page_size=-3")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.JobPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, resp.PageSize)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("page beyond the data is empty with intact envelope", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/v1/jobs?page=9&page_size=10")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.JobPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, 9, resp.Page)
		assert.Empty(t, resp.Items)
	})
}

func TestRestartJob(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "job-failed", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-running", "acme", domain.JobStatusRunning, base)
	r := newTestRouter(store)

	t.Run("restarts a failed job", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/job-failed/restart")
		require.Equal(t, http.StatusOK, w.Code)

		var outcome domain.RestartOutcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
		assert.True(t, outcome.Success)
		assert.Equal(t, "job-failed", outcome.JobID)

		job, err := store.GetJobByID(context.Background(), "job-failed")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusPending, job.Status)
	})

	t.Run("unknown job is 404", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/no-such-job/restart")
		require.Equal(t, http.StatusNotFound, w.Code)

		var outcome domain.RestartOutcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
		assert.False(t, outcome.Success)
		assert.Equal(t, domain.RestartReasonNotFound, outcome.Reason)
	})

	t.Run("non-failed job is 409", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/v1/jobs/job-running/restart")
		require.Equal(t, http.StatusConflict, w.Code)

		var outcome domain.RestartOutcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
		assert.Equal(t, domain.RestartReasonNotFailed, outcome.Reason)
	})
}

func TestRestartAllFailed(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "job-1", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-2", "acme", domain.JobStatusFailed, base.Add(time.Minute))
	seedJob(store, "job-3", "globex", domain.JobStatusFailed, base.Add(2*time.Minute))
	seedJob(store, "job-4", "acme", domain.JobStatusCompleted, base.Add(3*time.Minute))
	r := newTestRouter(store)

	t.Run("tenant scoped", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/v1/restart-all-failed?tenant=acme")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.RestartAllResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Summary.Attempted)
		assert.Equal(t, 2, resp.Summary.Succeeded)
		assert.Equal(t, 0, resp.Summary.Failed)
		require.Len(t, resp.Outcomes, 2)
		assert.Equal(t, "job-2", resp.Outcomes[0].JobID)
		assert.Equal(t, "job-1", resp.Outcomes[1].JobID)

		// The other tenant's failed job is untouched.
		job, err := store.GetJobByID(context.Background(), "job-3")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusFailed, job.Status)
	})

	t.Run("nothing left to restart", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/v1/restart-all-failed?tenant=acme")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.RestartAllResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Summary.Attempted)
		assert.Empty(t, resp.Outcomes)
	})
}

func TestListTenants(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "job-1", "globex", domain.JobStatusCompleted, base)
	seedJob(store, "job-2", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-3", "acme", domain.JobStatusRunning, base)
	r := newTestRouter(store)

	w := doRequest(t, r, http.MethodGet, "/api/v1/tenants")
	require.Equal(t, http.StatusOK, w.Code)

	var tenants []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tenants))
	assert.Equal(t, []string{"acme", "globex"}, tenants)
}

func TestStats(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "job-1", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-2", "acme", domain.JobStatusFailed, base)
	seedJob(store, "job-3", "acme", domain.JobStatusRunning, base)
	r := newTestRouter(store)

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, map[string]int{
		domain.JobStatusPending:   0,
		domain.JobStatusRunning:   1,
		domain.JobStatusCompleted: 0,
		domain.JobStatusFailed:    2,
	}, counts)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(storage.NewMemoryStore())

	w := doRequest(t, r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body["store_reachable"])
}
