package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	apierrors "telcoclean/internal/errors"
	"telcoclean/internal/operations"
	"telcoclean/internal/report"
	"telcoclean/internal/services"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeReports struct {
	latest *services.RunResult
}

func (f *fakeReports) Latest() (*services.RunResult, error) {
	if f.latest == nil {
		return nil, services.ErrNoRun
	}
	return f.latest, nil
}

func (f *fakeReports) Table(name string) (*services.TableInfo, error) {
	schema, ok := domain.Schema(domain.TableName(name))
	if !ok {
		return nil, services.ErrUnknownTable
	}
	if f.latest == nil {
		return nil, services.ErrNoRun
	}
	return &services.TableInfo{
		Table:   schema.Name,
		Rows:    f.latest.Cleaned.RowCounts()[schema.Name],
		Columns: schema.Header(),
	}, nil
}

func sampleResult(t *testing.T) *services.RunResult {
	t.Helper()
	stages, err := cleaning.NewStages(cleaning.DefaultRules(config.Default().Rules))
	require.NoError(t, err)
	raw := testutil.SampleDataset()
	profile := report.NewProfile(raw, config.Default().Report)
	corrections := cleaning.NewCorrections()
	ds := stages.Clean(raw.Clone(), corrections)

	rep := report.Emit(ds, report.Checklist, corrections)
	rep.RunID = "run-1"
	rep.Profile = profile
	return &services.RunResult{ID: "run-1", Report: rep, Cleaned: ds}
}

func reportRouter(svc ReportService) chi.Router {
	r := chi.NewRouter()
	NewReportHandler(svc, discardLogger()).Routes(r)
	return r
}

func decodeError(t *testing.T, body []byte) *apierrors.APIError {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestReportHandler_NoRunYet(t *testing.T) {
	r := reportRouter(&fakeReports{})

	for _, path := range []string{"/report", "/profile", "/tables/billing"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "REPORT_NOT_FOUND", decodeError(t, w.Body.Bytes()).ErrorCode)
		})
	}
}

func TestReportHandler_GetReport(t *testing.T) {
	r := reportRouter(&fakeReports{latest: sampleResult(t)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Len(t, got.Rows, 5)
	assert.Contains(t, got.Flags, report.FlagCount{Table: domain.TableBilling, Column: "data_quality_flag", Flagged: 2})
	assert.True(t, got.Complete())
}

func TestReportHandler_GetReportText(t *testing.T) {
	r := reportRouter(&fakeReports{latest: sampleResult(t)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?format=text", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "DATA CLEANING SUMMARY REPORT")
}

func TestReportHandler_GetProfile(t *testing.T) {
	r := reportRouter(&fakeReports{latest: sampleResult(t)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got report.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.NegativeBills)
	assert.Equal(t, 1, got.OrphanUsage)
}

func TestReportHandler_GetTable(t *testing.T) {
	r := reportRouter(&fakeReports{latest: sampleResult(t)})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantRows   int
	}{
		{name: "billing", path: "/tables/billing", wantStatus: http.StatusOK, wantRows: 4},
		{name: "outages", path: "/tables/network_outages", wantStatus: http.StatusOK, wantRows: 3},
		{name: "unknown", path: "/tables/payments", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "NOT_FOUND", decodeError(t, w.Body.Bytes()).ErrorCode)
				return
			}

			var info services.TableInfo
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
			assert.Equal(t, tt.wantRows, info.Rows)
			assert.NotEmpty(t, info.Columns)
		})
	}
}

func newQueue(t *testing.T, run operations.JobFunc) *operations.JobQueue {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	q := operations.NewJobQueue(1, operations.NewMemoryJobStore(), run, discardLogger())
	q.Start(ctx)
	t.Cleanup(func() {
		q.Stop(time.Second)
		cancel()
	})
	return q
}

func TestRunsHandler_StartAndPoll(t *testing.T) {
	q := newQueue(t, func(context.Context, *operations.Job) error { return nil })
	r := NewRunsHandler(q, discardLogger()).Routes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	var started RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotNil(t, started.Job)
	require.NotEmpty(t, started.ID)
	assert.Equal(t, "/api/runs/"+started.ID, w.Header().Get("Location"))

	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+started.ID, nil))
		var got RunResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &got) != nil {
			return false
		}
		return got.Status == operations.JobStatusCompleted && got.IsComplete
	}, 2*time.Second, 10*time.Millisecond)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?status=completed&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestRunsHandler_FailedRun(t *testing.T) {
	q := newQueue(t, func(context.Context, *operations.Job) error {
		return apierrors.NewLoadError("billing.csv", errors.New("missing"))
	})
	r := NewRunsHandler(q, discardLogger()).Routes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	var started RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	require.Eventually(t, func() bool {
		job, err := q.GetJob(started.ID)
		return err == nil && job.Status == operations.JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+started.ID, nil))
	var got RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Error, "billing.csv")
	assert.True(t, got.IsComplete)
}

func TestRunsHandler_Errors(t *testing.T) {
	q := newQueue(t, func(context.Context, *operations.Job) error { return nil })
	r := NewRunsHandler(q, discardLogger()).Routes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w.Body.Bytes()).ErrorCode)
}

func TestHealthHandler(t *testing.T) {
	health := services.NewHealthService("test", "", nil, nil, discardLogger())
	h := NewHealthHandler(health, discardLogger())

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}

func TestMetricsHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsHandler(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cleaning_runs_total 1\n"))
	})
	w = httptest.NewRecorder()
	NewMetricsHandler(exposition).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cleaning_runs_total")
}
