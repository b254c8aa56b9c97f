package renderer

/**
 * @brief resource is embedded by every GPU object. It owns exactly one
 * handle and releases it at most once; a second Destroy is a no-op.
 */
type resource struct {
	ctx       Context
	handle    uint32
	release   func()
	destroyed bool
}

func (r *resource) init(ctx Context, handle uint32, release func()) {
	r.ctx = ctx
	r.handle = handle
	r.release = release
	r.destroyed = false
}

// Handle returns the driver handle. It is invalid after Destroy.
func (r *resource) Handle() uint32 {
	return r.handle
}

func (r *resource) Context() Context {
	return r.ctx
}

func (r *resource) IsDestroyed() bool {
	return r.destroyed
}

func (r *resource) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.release != nil {
		r.release()
	}
}

// GPUBuffer is anything that can be bound to an indexed buffer slot.
type GPUBuffer interface {
	Handle() uint32
}

// Sampler is anything that can be bound to a texture unit.
type Sampler interface {
	Handle() uint32
}
