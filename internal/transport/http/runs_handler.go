package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apierrors "telcoclean/internal/errors"
	"telcoclean/internal/middleware"
	"telcoclean/internal/operations"
)

// RunsHandler queues pipeline runs and reports their status.
type RunsHandler struct {
	queue  RunQueue
	logger *slog.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(queue RunQueue, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		queue:  queue,
		logger: logger.With(slog.String("handler", "runs")),
	}
}

// Routes sets up the run routes
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartRun)
	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)
	return r
}

// RunResponse is the status of one queued run.
type RunResponse struct {
	*operations.Job
	Duration   string `json:"duration,omitempty"`
	IsComplete bool   `json:"is_complete"`
}

// Render implements render.Renderer
func (rr *RunResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newRunResponse(job *operations.Job) *RunResponse {
	resp := &RunResponse{Job: job}
	if job.StartedAt != nil && job.CompletedAt != nil {
		resp.Duration = job.CompletedAt.Sub(*job.StartedAt).String()
	}
	resp.IsComplete = job.Status == operations.JobStatusCompleted || job.Status == operations.JobStatusFailed
	return resp
}

// StartRun handles POST /api/runs. The run executes asynchronously; the
// response carries the job to poll.
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("runs-handler").Start(r.Context(), "runs_handler.start_run",
		trace.WithAttributes(attribute.String("request_id", middleware.GetReqID(r.Context()))))
	defer span.End()

	job := operations.NewJob(ctx)
	span.SetAttributes(attribute.String("job.id", job.ID))

	if err := h.queue.Enqueue(job); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "job enqueue failed")
		h.logger.ErrorContext(ctx, "failed to enqueue run",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrServiceUnavailable))
		return
	}

	h.logger.InfoContext(ctx, "run enqueued", slog.String("job_id", job.ID))
	w.Header().Set("Location", "/api/runs/"+job.ID)
	render.Status(r, http.StatusAccepted)
	render.Render(w, r, newRunResponse(job))
}

// GetRun handles GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.queue.GetJob(id)
	if err != nil {
		if errors.Is(err, operations.ErrOperationNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("run "+id)))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get run",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.Render(w, r, newRunResponse(job))
}

// ListRuns handles GET /api/runs?status=&limit=
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := operations.JobFilter{
		Status: operations.JobStatus(r.URL.Query().Get("status")),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer", limitStr)))
			return
		}
		filter.Limit = limit
	}

	jobs, err := h.queue.ListJobs(filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list runs", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	runs := make([]*RunResponse, 0, len(jobs))
	for _, job := range jobs {
		runs = append(runs, newRunResponse(job))
	}
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"stats": h.queue.GetQueueStats(),
	})
}
