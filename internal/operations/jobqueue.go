package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"telcoclean/internal/infrastructure"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one asynchronous pipeline run requested over HTTP
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TraceID     string     `json:"trace_id,omitempty"`
}

// NewJob returns a pending job carrying the caller's trace id.
func NewJob(ctx context.Context) *Job {
	return &Job{
		ID:      uuid.New().String(),
		Status:  JobStatusPending,
		TraceID: infrastructure.GetTraceID(ctx),
	}
}

// JobStore interface for job persistence
type JobStore interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter JobFilter) ([]*Job, error)
	CleanupOldJobs(olderThan time.Duration) int
}

// JobFilter for querying jobs
type JobFilter struct {
	Status JobStatus
	Since  time.Time
	Limit  int
}

// JobFunc performs the work of a job.
type JobFunc func(ctx context.Context, job *Job) error

// JobQueue runs jobs on a fixed pool of workers
type JobQueue struct {
	mu        sync.RWMutex
	jobs      chan *Job
	workers   int
	wg        sync.WaitGroup
	store     JobStore
	run       JobFunc
	logger    *slog.Logger
	shutdown  chan struct{}
	stopOnce  sync.Once
	active    map[string]struct{}
	retention time.Duration
}

// NewJobQueue creates a new job queue
func NewJobQueue(workers int, store JobStore, run JobFunc, logger *slog.Logger) *JobQueue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &JobQueue{
		jobs:     make(chan *Job, workers*2),
		workers:  workers,
		store:    store,
		run:      run,
		logger:   logger.With(slog.String("component", "jobqueue")),
		shutdown: make(chan struct{}),
		active:   make(map[string]struct{}),
	}
}

// WithRetention makes Start sweep finished jobs older than d from the
// store. Zero disables the sweep.
func (q *JobQueue) WithRetention(d time.Duration) *JobQueue {
	q.retention = d
	return q
}

// Start begins processing jobs
func (q *JobQueue) Start(ctx context.Context) {
	q.logger.Info("starting job queue",
		slog.Int("workers", q.workers),
		slog.Duration("retention", q.retention))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	if q.retention > 0 {
		q.wg.Add(1)
		go q.sweeper(ctx)
	}
}

// Stop gracefully shuts down the job queue
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.logger.Info("stopping job queue")
	q.stopOnce.Do(func() { close(q.shutdown) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("job queue stopped gracefully")
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded")
		return fmt.Errorf("timeout waiting for workers to finish")
	}
}

// Enqueue adds a job to the queue. A full queue rejects the job. Workers
// operate on their own copy, so the caller may keep reading job.
func (q *JobQueue) Enqueue(job *Job) error {
	job.Status = JobStatusPending
	job.CreatedAt = time.Now()

	if err := q.store.CreateJob(job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	queued := *job
	select {
	case q.jobs <- &queued:
		q.logger.Info("job enqueued", slog.String("job_id", job.ID))
		return nil
	default:
		job.Status = JobStatusFailed
		job.Error = "job queue is full"
		_ = q.store.UpdateJob(job)
		return fmt.Errorf("job queue is full")
	}
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	return q.store.GetJob(id)
}

// ListJobs returns jobs matching the filter
func (q *JobQueue) ListJobs(filter JobFilter) ([]*Job, error) {
	return q.store.ListJobs(filter)
}

// worker processes jobs from the queue
func (q *JobQueue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	logger := q.logger.With(slog.Int("worker_id", workerID))
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopped by context")
			return
		case <-q.shutdown:
			logger.Debug("worker stopped by shutdown")
			return
		case job := <-q.jobs:
			q.processJob(ctx, job, logger)
		}
	}
}

// sweeper drops expired jobs every half retention period
func (q *JobQueue) sweeper(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.retention / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.shutdown:
			return
		case <-ticker.C:
			if n := q.store.CleanupOldJobs(q.retention); n > 0 {
				q.logger.Debug("expired jobs removed", slog.Int("count", n))
			}
		}
	}
}

// processJob executes a single job
func (q *JobQueue) processJob(ctx context.Context, job *Job, logger *slog.Logger) {
	if job.TraceID != "" {
		ctx = infrastructure.WithTraceID(ctx, job.TraceID)
	}
	logger = logger.With(slog.String("job_id", job.ID))
	logger.InfoContext(ctx, "processing job started")

	q.mu.Lock()
	q.active[job.ID] = struct{}{}
	q.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "job processing panicked", slog.Any("panic", r))
			q.handleJobError(ctx, job, fmt.Errorf("job processing panicked: %v", r), logger)
		}

		q.mu.Lock()
		delete(q.active, job.ID)
		q.mu.Unlock()
	}()

	job.Status = JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	if err := q.store.UpdateJob(job); err != nil {
		logger.ErrorContext(ctx, "failed to update job status", slog.String("error", err.Error()))
	}

	if err := q.run(ctx, job); err != nil {
		q.handleJobError(ctx, job, err, logger)
		return
	}

	job.Status = JobStatusCompleted
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	if err := q.store.UpdateJob(job); err != nil {
		logger.ErrorContext(ctx, "failed to update job completion", slog.String("error", err.Error()))
	}

	logger.InfoContext(ctx, "processing job completed")
}

// handleJobError handles job execution errors
func (q *JobQueue) handleJobError(ctx context.Context, job *Job, err error, logger *slog.Logger) {
	logger.ErrorContext(ctx, "job failed", slog.String("error", err.Error()))

	job.Status = JobStatusFailed
	job.Error = err.Error()
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err := q.store.UpdateJob(job); err != nil {
		logger.ErrorContext(ctx, "failed to update job error", slog.String("error", err.Error()))
	}
}

// GetQueueStats returns queue statistics
func (q *JobQueue) GetQueueStats() map[string]interface{} {
	q.mu.RLock()
	activeCount := len(q.active)
	q.mu.RUnlock()

	return map[string]interface{}{
		"workers":     q.workers,
		"queue_size":  len(q.jobs),
		"queue_cap":   cap(q.jobs),
		"active_jobs": activeCount,
		"retention":   q.retention.String(),
	}
}
