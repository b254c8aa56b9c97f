package engine

/**
 * @brief The hooks an application plugs into the engine loop. Every hook runs
 * on the main thread with the GL context current.
 */
type Application interface {
	// Initialize runs once after every engine system is up.
	Initialize(e *Engine) error
	Update(deltaTime float64) error
	// Render draws into the default framebuffer, already cleared.
	Render(deltaTime float64) error
	// Resize receives the new framebuffer size. It is never called with a
	// zero dimension.
	Resize(width uint32, height uint32) error
	Shutdown() error
}
