package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	runs int64
}

func (r *countingResolver) ResolvePending(ctx context.Context) error {
	atomic.AddInt64(&r.runs, 1)
	return nil
}

func TestDeviceLinkJobRunOnce(t *testing.T) {
	resolver := &countingResolver{}
	job := NewDeviceLinkJob(resolver, time.Hour, nil)

	require.NoError(t, job.RunOnce(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt64(&resolver.runs))
}

func TestDeviceLinkJobTicksUntilStopped(t *testing.T) {
	resolver := &countingResolver{}
	job := NewDeviceLinkJob(resolver, 10*time.Millisecond, nil)

	job.Start(context.Background())
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&resolver.runs) >= 2
	}, time.Second, 5*time.Millisecond)
	job.Stop()

	runs := atomic.LoadInt64(&resolver.runs)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, atomic.LoadInt64(&resolver.runs))
}
