package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billdesk/pkg/logger"
)

// JobStatus is the lifecycle state of a background job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is a snapshot of a background job as reported to clients.
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     JobStatus  `json:"status"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Finished jobs are kept for polling until they are older than
// defaultJobRetention or more than defaultMaxFinishedJobs have piled up.
const (
	defaultJobRetention    = time.Hour
	defaultMaxFinishedJobs = 100
)

// JobFunc is the work of a background job.
type JobFunc func(ctx context.Context) (any, error)

// JobTracker runs long operations (imports, backups) off the request path
// and keeps their results for polling.
type JobTracker struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger

	retention   time.Duration
	maxFinished int
}

// NewJobTracker creates a tracker. Close cancels jobs still running.
func NewJobTracker(log *logger.Logger) *JobTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobTracker{
		jobs:        make(map[string]*Job),
		ctx:         ctx,
		cancel:      cancel,
		log:         log.WithComponent("jobs"),
		retention:   defaultJobRetention,
		maxFinished: defaultMaxFinishedJobs,
	}
}

// Start registers a job and runs fn in its own goroutine.
func (t *JobTracker) Start(kind string, fn JobFunc) Job {
	t.mu.Lock()
	job := t.register(kind)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(job.ID, fn)
	return job
}

// StartExclusive is Start unless a job of the same kind is still pending
// or running, in which case that job is returned with false.
func (t *JobTracker) StartExclusive(kind string, fn JobFunc) (Job, bool) {
	t.mu.Lock()
	for _, j := range t.jobs {
		if j.Kind == kind && (j.Status == JobPending || j.Status == JobRunning) {
			t.mu.Unlock()
			return *j, false
		}
	}
	job := t.register(kind)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(job.ID, fn)
	return job, true
}

// register adds a pending job. Caller holds mu.
func (t *JobTracker) register(kind string) Job {
	t.prune(time.Now().UTC())
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
	}
	t.jobs[job.ID] = job
	return *job
}

// prune drops finished jobs past the retention window, then the oldest
// finished jobs beyond maxFinished. Caller holds mu.
func (t *JobTracker) prune(now time.Time) {
	var finished []*Job
	for id, j := range t.jobs {
		if j.FinishedAt == nil {
			continue
		}
		if now.Sub(*j.FinishedAt) > t.retention {
			delete(t.jobs, id)
			continue
		}
		finished = append(finished, j)
	}
	if len(finished) <= t.maxFinished {
		return
	}
	slices.SortFunc(finished, func(a, b *Job) int {
		if c := a.FinishedAt.Compare(*b.FinishedAt); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	for _, j := range finished[:len(finished)-t.maxFinished] {
		delete(t.jobs, j.ID)
	}
}

func (t *JobTracker) run(id string, fn JobFunc) {
	defer t.wg.Done()
	t.update(id, func(j *Job) { j.Status = JobRunning })

	result, err := fn(t.ctx)

	t.update(id, func(j *Job) {
		now := time.Now().UTC()
		j.FinishedAt = &now
		j.Result = result
		if err != nil {
			j.Status = JobFailed
			j.Error = err.Error()
			return
		}
		j.Status = JobSucceeded
	})
	if err != nil {
		t.log.Warnw("job failed", "job_id", id, "error", err)
	} else {
		t.log.Infow("job finished", "job_id", id)
	}
}

func (t *JobTracker) update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok {
		fn(j)
	}
}

// Get returns a copy of the job.
func (t *JobTracker) Get(id string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Wait blocks until every started job has finished.
func (t *JobTracker) Wait() {
	t.wg.Wait()
}

// Close cancels running jobs and waits for them.
func (t *JobTracker) Close() {
	t.cancel()
	t.wg.Wait()
}
