package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobTrackerRecordsResults(t *testing.T) {
	tracker := NewJobTracker(logger.Nop())
	defer tracker.Close()

	ok := tracker.Start("import", func(context.Context) (any, error) { return 3, nil })
	bad := tracker.Start("backup", func(context.Context) (any, error) { return nil, errors.New("disk full") })
	assert.Equal(t, JobPending, ok.Status)
	assert.NotEqual(t, ok.ID, bad.ID)

	tracker.Wait()

	job, found := tracker.Get(ok.ID)
	require.True(t, found)
	assert.Equal(t, JobSucceeded, job.Status)
	assert.Equal(t, 3, job.Result)
	assert.NotNil(t, job.FinishedAt)

	job, found = tracker.Get(bad.ID)
	require.True(t, found)
	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, "disk full", job.Error)

	_, found = tracker.Get("missing")
	assert.False(t, found)
}

func TestJobTrackerStartExclusive(t *testing.T) {
	tracker := NewJobTracker(logger.Nop())
	defer tracker.Close()

	release := make(chan struct{})
	first, ok := tracker.StartExclusive("backup", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	require.True(t, ok)

	again, ok := tracker.StartExclusive("backup", func(context.Context) (any, error) { return nil, nil })
	assert.False(t, ok)
	assert.Equal(t, first.ID, again.ID)

	_, ok = tracker.StartExclusive("product_import", func(context.Context) (any, error) { return nil, nil })
	assert.True(t, ok)

	close(release)
	tracker.Wait()

	_, ok = tracker.StartExclusive("backup", func(context.Context) (any, error) { return nil, nil })
	assert.True(t, ok)
}

func TestJobTrackerCloseCancels(t *testing.T) {
	tracker := NewJobTracker(logger.Nop())
	started := make(chan struct{})
	job := tracker.Start("slow", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started
	tracker.Close()

	got, _ := tracker.Get(job.ID)
	assert.Equal(t, JobFailed, got.Status)
	assert.Equal(t, context.Canceled.Error(), got.Error)
}

func TestJobTrackerEvictsOldestFinishedJobs(t *testing.T) {
	tracker := NewJobTracker(logger.Nop())
	defer tracker.Close()
	tracker.maxFinished = 2

	var ids []string
	for range 3 {
		job := tracker.Start("import", func(context.Context) (any, error) { return nil, nil })
		tracker.Wait()
		ids = append(ids, job.ID)
	}
	latest := tracker.Start("import", func(context.Context) (any, error) { return nil, nil })
	tracker.Wait()

	_, found := tracker.Get(ids[0])
	assert.False(t, found)
	for _, id := range append(ids[1:], latest.ID) {
		_, found = tracker.Get(id)
		assert.True(t, found, id)
	}
}

func TestJobTrackerEvictsExpiredJobsButKeepsRunning(t *testing.T) {
	tracker := NewJobTracker(logger.Nop())
	defer tracker.Close()
	tracker.retention = time.Millisecond

	done := tracker.Start("backup", func(context.Context) (any, error) { return nil, nil })
	tracker.Wait()

	release := make(chan struct{})
	running := tracker.Start("import", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	time.Sleep(5 * time.Millisecond)
	tracker.Start("export", func(context.Context) (any, error) { return nil, nil })

	_, found := tracker.Get(done.ID)
	assert.False(t, found)
	_, found = tracker.Get(running.ID)
	assert.True(t, found)

	close(release)
	tracker.Wait()
}
