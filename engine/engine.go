// Package engine hosts an Application: it brings up the window, the graphics
// context and the engine systems, then drives the frame loop.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/triangle/engine/assets"
	"github.com/spaghettifunk/triangle/engine/config"
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/platform"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/opengl"
	"github.com/spaghettifunk/triangle/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageShutdown
)

type Engine struct {
	currentStage  Stage
	config        *config.Config
	app           Application
	isRunning     atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	gpu           renderer.Context
	uploads       *renderer.WorkQueue
	events        *core.EventBus
	input         *core.InputState
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
}

func New(cfg *config.Config, app Application) (*Engine, error) {
	if cfg == nil || app == nil {
		return nil, fmt.Errorf("engine needs a configuration and an application: %w", core.ErrInvalidArgument)
	}
	events := core.NewEventBus()
	input := core.NewInputState(events)

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		app:          app,
		events:       events,
		input:        input,
		platform:     platform.New(input, events),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.App.Width,
		height:       cfg.App.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized: %w", core.ErrInvalidArgument)
	}
	e.currentStage = EngineStageInitializing

	debug := e.config.Log.Level == "debug"
	if err := e.platform.Startup(platform.WindowConfig{
		Title:  e.config.App.Name,
		X:      e.config.App.X,
		Y:      e.config.App.Y,
		Width:  e.config.App.Width,
		Height: e.config.App.Height,
		VSync:  e.config.App.VSync,
		Debug:  debug,
	}); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()

	gpu, err := opengl.NewContext(debug)
	if err != nil {
		return err
	}
	e.gpu = gpu

	if e.uploads, err = renderer.NewWorkQueue(e.config.Render.UploadQueue); err != nil {
		return err
	}

	if e.assetManager, err = assets.NewAssetManager(e.config.Assets.Root, e.events); err != nil {
		return err
	}
	if e.config.Assets.Watch {
		if err := e.assetManager.Watch(); err != nil {
			core.LogWarn("asset hot reload disabled: %s", err)
		}
	}

	if e.systemManager, err = systems.NewSystemManager(e.config, e.gpu, e.assetManager, e.uploads, e.events); err != nil {
		return err
	}

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.app.Initialize(e); err != nil {
		return err
	}
	if err := e.app.Resize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running: %w", core.ErrInvalidArgument)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			break
		}
		if e.isSuspended {
			continue
		}

		// Results of finished background jobs land on the GPU here.
		e.uploads.Drain(e.gpu)

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetAbsoluteTime()

		if err := e.app.Update(delta); err != nil {
			core.LogError("application update failed, shutting down: %s", err)
			runErr = err
			break
		}

		e.beginFrame()
		if err := e.app.Render(delta); err != nil {
			core.LogError("application render failed, shutting down: %s", err)
			runErr = err
			break
		}
		e.platform.SwapBuffers()

		e.metrics.Update(e.platform.GetAbsoluteTime() - frameStartTime)

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		e.input.Update()
		e.lastTime = currentTime
	}
	e.isRunning.Store(false)

	return errors.Join(runErr, e.Shutdown())
}

// beginFrame clears the window framebuffer with the configured colour.
func (e *Engine) beginFrame() {
	c := e.config.Render.ClearColor
	e.gpu.BindFramebuffer(0)
	e.gpu.Viewport(0, 0, e.width, e.height)
	e.gpu.ClearColor(math.NewVec4(c[0], c[1], c[2], c[3]))
	e.gpu.Clear(metadata.ClearAll)
}

// Stop asks the loop to exit after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

/**
 * @brief Releases everything in the reverse order of Initialize. Calling it
 * again, or on an engine that never initialized, is a no-op.
 */
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.app != nil && e.systemManager != nil {
		errs = append(errs, e.app.Shutdown())
	}
	e.events.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.events.Unregister(core.EVENT_CODE_KEY_PRESSED, e)
	e.events.Unregister(core.EVENT_CODE_RESIZED, e)

	if e.systemManager != nil {
		errs = append(errs, e.systemManager.Shutdown())
	}
	if e.uploads != nil && e.uploads.Len() > 0 {
		// Queued uploads refer to textures that are gone now.
		core.LogDebug("discarding %d pending uploads", e.uploads.Len())
	}
	if e.assetManager != nil {
		errs = append(errs, e.assetManager.Close())
	}
	errs = append(errs, e.platform.Shutdown())

	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Context() renderer.Context {
	return e.gpu
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Input() *core.InputState {
	return e.input
}

func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Resources bundles what materials need to build their GPU objects.
func (e *Engine) Resources() materials.Resources {
	return materials.Resources{
		Context:  e.gpu,
		Shaders:  e.assetManager.Shaders(),
		Textures: e.systemManager.Textures(),
	}
}

// GetFramebufferSize returns the width and height (in this order)
// of the window framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := uint32(max(se.Width, 0))
	height := uint32(max(se.Height, 0))
	if width == e.width && height == e.height && !e.isSuspended {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.app.Resize(width, height); err != nil {
		core.LogError("application resize failed: %s", err)
	}
	return false
}
