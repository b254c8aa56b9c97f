package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderLinkErrorUnwraps(t *testing.T) {
	var err error = fmt.Errorf("grid material: %w", &ShaderLinkError{Log: "error: undefined symbol\n"})

	assert.ErrorIs(t, err, ErrShaderLink)

	var linkErr *ShaderLinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "error: undefined symbol\n", linkErr.Log)
	assert.Contains(t, err.Error(), "undefined symbol")
}

func TestIdentifierPoolReusesReleasedSlots(t *testing.T) {
	pool := NewIdentifierPool()

	a := pool.Acquire("a")
	b := pool.Acquire("b")
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)

	require.NoError(t, pool.Release(a))
	_, ok := pool.Owner(a)
	assert.False(t, ok)

	c := pool.Acquire("c")
	assert.Equal(t, a, c)
	owner, ok := pool.Owner(c)
	assert.True(t, ok)
	assert.Equal(t, "c", owner)

	assert.ErrorIs(t, pool.Release(0), ErrInvalidArgument)
	assert.ErrorIs(t, pool.Release(42), ErrInvalidArgument)
}

func TestEventBusStopsAtFirstHandler(t *testing.T) {
	bus := NewEventBus()

	var calls []string
	first := func(ctx EventContext) bool {
		calls = append(calls, "first")
		return true
	}
	second := func(ctx EventContext) bool {
		calls = append(calls, "second")
		return false
	}

	listenerA, listenerB := &struct{ n int }{1}, &struct{ n int }{2}
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, listenerA, first))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, listenerB, second))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, listenerA, first))

	assert.True(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED, Data: &ResizeEvent{Width: 1, Height: 1}}))
	assert.Equal(t, []string{"first"}, calls)

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, listenerA))
	assert.False(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestInputStateTracksClicks(t *testing.T) {
	bus := NewEventBus()
	pressed := 0
	bus.Register(EVENT_CODE_KEY_PRESSED, nil, func(ctx EventContext) bool {
		if ev, ok := ctx.Data.(*KeyEvent); ok && ev.KeyCode == KEY_W {
			pressed++
		}
		return false
	})

	in := NewInputState(bus)
	in.ProcessKey(KEY_W, true)
	in.ProcessKey(KEY_W, true)
	assert.True(t, in.IsKeyDown(KEY_W))
	assert.Equal(t, 1, pressed)

	in.ProcessButton(BUTTON_LEFT, true)
	assert.True(t, in.IsButtonClicked(BUTTON_LEFT))
	in.Update()
	assert.False(t, in.IsButtonClicked(BUTTON_LEFT))
	assert.True(t, in.IsButtonDown(BUTTON_LEFT))

	in.ProcessMouseMove(12, 34)
	x, y := in.MousePosition()
	assert.Equal(t, float32(12), x)
	assert.Equal(t, float32(34), y)
}

func TestMetricsAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 100; i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)
	assert.Equal(t, float64(100), m.FPS())
	assert.Equal(t, int64(100), m.FrameCount())
}
