package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/infrastructure"
)

func waitForStatus(t *testing.T, q *JobQueue, id string, want JobStatus) *Job {
	t.Helper()
	var job *Job
	require.Eventually(t, func() bool {
		var err error
		job, err = q.GetJob(id)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestJobQueue_RunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	traces := make(chan string, 1)
	q := NewJobQueue(2, NewMemoryJobStore(), func(ctx context.Context, job *Job) error {
		traces <- infrastructure.GetTraceID(ctx)
		return nil
	}, discardLogger())
	q.Start(ctx)
	defer q.Stop(time.Second)

	job := NewJob(infrastructure.WithTraceID(context.Background(), "req-1"))
	require.NoError(t, q.Enqueue(job))

	done := waitForStatus(t, q, job.ID, JobStatusCompleted)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Error)
	assert.Equal(t, "req-1", <-traces)
}

func TestJobQueue_FailedAndPanickingJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewJobQueue(1, NewMemoryJobStore(), func(ctx context.Context, job *Job) error {
		if job.TraceID == "panic" {
			panic("kaboom")
		}
		return errors.New("load failed")
	}, discardLogger())
	q.Start(ctx)
	defer q.Stop(time.Second)

	failing := NewJob(context.Background())
	require.NoError(t, q.Enqueue(failing))
	got := waitForStatus(t, q, failing.ID, JobStatusFailed)
	assert.Equal(t, "load failed", got.Error)

	panicking := NewJob(infrastructure.WithTraceID(context.Background(), "panic"))
	require.NoError(t, q.Enqueue(panicking))
	got = waitForStatus(t, q, panicking.ID, JobStatusFailed)
	assert.Contains(t, got.Error, "kaboom")
}

func TestJobQueue_FullQueueRejects(t *testing.T) {
	q := NewJobQueue(1, NewMemoryJobStore(), func(context.Context, *Job) error { return nil }, discardLogger())

	// Not started: capacity is workers*2.
	require.NoError(t, q.Enqueue(NewJob(context.Background())))
	require.NoError(t, q.Enqueue(NewJob(context.Background())))

	rejected := NewJob(context.Background())
	assert.Error(t, q.Enqueue(rejected))

	got, err := q.GetJob(rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, 2, q.GetQueueStats()["queue_size"])
}

func TestJobQueue_RetentionSweep(t *testing.T) {
	tests := []struct {
		name      string
		retention time.Duration
		wantKept  bool
	}{
		{name: "expired jobs are removed", retention: 40 * time.Millisecond, wantKept: false},
		{name: "zero retention keeps jobs", retention: 0, wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			q := NewJobQueue(1, NewMemoryJobStore(), func(context.Context, *Job) error { return nil }, discardLogger()).
				WithRetention(tt.retention)
			q.Start(ctx)
			defer q.Stop(time.Second)

			job := NewJob(context.Background())
			require.NoError(t, q.Enqueue(job))
			waitForStatus(t, q, job.ID, JobStatusCompleted)

			if tt.wantKept {
				time.Sleep(100 * time.Millisecond)
				_, err := q.GetJob(job.ID)
				assert.NoError(t, err)
				return
			}
			require.Eventually(t, func() bool {
				_, err := q.GetJob(job.ID)
				return errors.Is(err, ErrOperationNotFound)
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestJobQueue_StopWaitsForSweeper(t *testing.T) {
	q := NewJobQueue(1, NewMemoryJobStore(), func(context.Context, *Job) error { return nil }, discardLogger()).
		WithRetention(time.Hour)
	q.Start(context.Background())
	assert.NoError(t, q.Stop(time.Second))
}

func TestMemoryJobStore(t *testing.T) {
	store := NewMemoryJobStore()
	old := &Job{ID: "old", Status: JobStatusCompleted, CreatedAt: time.Now().Add(-2 * time.Hour)}
	recent := &Job{ID: "recent", Status: JobStatusPending, CreatedAt: time.Now()}
	require.NoError(t, store.CreateJob(old))
	require.NoError(t, store.CreateJob(recent))
	assert.Error(t, store.CreateJob(recent))

	jobs, err := store.ListJobs(JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "recent", jobs[0].ID)

	jobs, err = store.ListJobs(JobFilter{Status: JobStatusCompleted})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "old", jobs[0].ID)

	// Returned jobs are copies.
	jobs[0].Status = JobStatusFailed
	stored, err := store.GetJob("old")
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, stored.Status)

	assert.Equal(t, 1, store.CleanupOldJobs(time.Hour))
	_, err = store.GetJob("old")
	assert.ErrorIs(t, err, ErrOperationNotFound)
	assert.Error(t, store.UpdateJob(&Job{ID: "old"}))
}
