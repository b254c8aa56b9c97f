package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/config"
	"github.com/spaghettifunk/triangle/engine/core"
)

type recordingApp struct {
	resizes [][2]uint32
}

func (a *recordingApp) Initialize(e *Engine) error   { return nil }
func (a *recordingApp) Update(deltaTime float64) error { return nil }
func (a *recordingApp) Render(deltaTime float64) error { return nil }
func (a *recordingApp) Shutdown() error               { return nil }

func (a *recordingApp) Resize(width, height uint32) error {
	a.resizes = append(a.resizes, [2]uint32{width, height})
	return nil
}

func resize(w, h int32) core.EventContext {
	return core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.ResizeEvent{Width: w, Height: h}}
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(nil, &recordingApp{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = New(config.Default(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	e, err := New(config.Default(), &recordingApp{})
	require.NoError(t, err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(config.Default(), &recordingApp{})
	require.NoError(t, err)
	assert.ErrorIs(t, e.Run(), core.ErrInvalidArgument)
	assert.NoError(t, e.Shutdown())
}

func TestResizeSuspendsAndResumes(t *testing.T) {
	app := &recordingApp{}
	e, err := New(config.Default(), app)
	require.NoError(t, err)

	e.onResized(resize(800, 600))
	e.onResized(resize(800, 600))
	assert.Equal(t, [][2]uint32{{800, 600}}, app.resizes)

	e.onResized(resize(0, 600))
	assert.True(t, e.isSuspended)
	assert.Len(t, app.resizes, 1)

	e.onResized(resize(800, 600))
	assert.False(t, e.isSuspended)
	assert.Equal(t, [][2]uint32{{800, 600}, {800, 600}}, app.resizes)

	assert.False(t, e.onResized(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: "bogus"}))
}

func TestEscapeRequestsQuit(t *testing.T) {
	e, err := New(config.Default(), &recordingApp{})
	require.NoError(t, err)
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.isRunning.Store(true)

	e.input.ProcessKey(core.KEY_A, true)
	assert.True(t, e.isRunning.Load())

	e.input.ProcessKey(core.KEY_ESCAPE, true)
	assert.False(t, e.isRunning.Load())
}
