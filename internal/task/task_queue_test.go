package task

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTaskQueueEnqueueDequeue(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, testLogger())
	task := newMockTask()

	require.NoError(t, queue.Enqueue(task))

	got := <-queue.GetChannel()
	assert.Equal(t, task.ID(), got.ID())
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())

	require.NoError(t, queue.Enqueue(newMockTask()))

	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueClosed(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())
	queue.Close()

	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice is a no-op, not a panic.
	queue.Close()
}
