package renderer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/containers"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

func TestWorkQueueDrainsInOrder(t *testing.T) {
	q, err := renderer.NewWorkQueue(8)
	require.NoError(t, err)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, q.Enqueue(context.Background(), func(renderer.Context) {
			order = append(order, i)
		}))
	}
	assert.Equal(t, 3, q.Drain(rendertest.NewContext()))
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 0, q.Drain(rendertest.NewContext()))
}

func TestWorkQueueDefersWorkEnqueuedWhileDraining(t *testing.T) {
	q, err := renderer.NewWorkQueue(4)
	require.NoError(t, err)

	ran := 0
	require.NoError(t, q.TryEnqueue(func(renderer.Context) {
		ran++
		require.NoError(t, q.TryEnqueue(func(renderer.Context) { ran++ }))
	}))
	assert.Equal(t, 1, q.Drain(rendertest.NewContext()))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1, q.Drain(rendertest.NewContext()))
	assert.Equal(t, 2, ran)
}

func TestWorkQueueBackpressure(t *testing.T) {
	q, err := renderer.NewWorkQueue(1)
	require.NoError(t, err)

	require.NoError(t, q.TryEnqueue(func(renderer.Context) {}))
	assert.ErrorIs(t, q.TryEnqueue(func(renderer.Context) {}), containers.ErrQueueFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, func(renderer.Context) {}), context.Canceled)
}

func TestWorkQueueConcurrentProducers(t *testing.T) {
	q, err := renderer.NewWorkQueue(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				_ = q.Enqueue(context.Background(), func(renderer.Context) {})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, q.Drain(rendertest.NewContext()))
}
