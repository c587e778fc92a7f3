package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})

	require.Error(t, q.Enqueue(Job{ID: "early"}))

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "conflict.detected"}))
	select {
	case id := <-done:
		assert.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueDropsWhenBufferFull(t *testing.T) {
	gate := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, _ Job) error {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())

	// One job can be in flight and one buffered; the third must drop.
	var dropErr error
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(Job{ID: fmt.Sprintf("job-%d", i)}); err != nil {
			dropErr = err
		}
	}
	require.Error(t, dropErr)
	assert.GreaterOrEqual(t, q.Dropped(), int64(1))

	close(gate)
	q.Stop()
}
