package renderer

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/**
 * @brief One linked shader program plus the fixed function state applied
 * whenever it is bound.
 */
type RenderPipeline struct {
	resource
	shaders []uint32
	layer   metadata.RenderLayer
	state   metadata.RenderState
}

/**
 * @brief Links the given stages into one program. When the driver reports a
 * non-empty link log the program is destroyed before returning so nothing
 * dangles on the context.
 * @param ctx The graphics context owning the program.
 * @param shaders The compiled stages. The caller keeps ownership of them.
 * @return The pipeline or a *core.ShaderLinkError.
 */
func NewRenderPipeline(ctx Context, shaders ...*Shader) (*RenderPipeline, error) {
	if len(shaders) == 0 {
		return nil, fmt.Errorf("render pipeline needs at least one shader stage: %w", core.ErrInvalidArgument)
	}

	program := ctx.CreateProgram()
	p := &RenderPipeline{
		shaders: make([]uint32, 0, len(shaders)),
		layer:   metadata.RenderLayerGeometry,
		state:   metadata.DefaultRenderState(),
	}
	p.init(ctx, program, func() {
		for _, s := range p.shaders {
			ctx.DetachShader(program, s)
		}
		ctx.DeleteProgram(program)
	})

	for _, s := range shaders {
		if s == nil {
			p.Destroy()
			return nil, fmt.Errorf("render pipeline got a nil shader stage: %w", core.ErrInvalidArgument)
		}
		ctx.AttachShader(program, s.Handle())
		p.shaders = append(p.shaders, s.Handle())
	}

	if log := ctx.LinkProgram(program); log != "" {
		p.Destroy()
		core.LogError("failed to link render pipeline: %s", log)
		return nil, &core.ShaderLinkError{Log: log}
	}
	return p, nil
}

// SetRenderLayer overwrites the whole state vector with the layer's preset.
func (p *RenderPipeline) SetRenderLayer(layer metadata.RenderLayer) error {
	state, err := metadata.LayerState(layer)
	if err != nil {
		return err
	}
	p.layer = layer
	p.state = state
	return nil
}

func (p *RenderPipeline) RenderLayer() metadata.RenderLayer {
	return p.layer
}

func (p *RenderPipeline) State() metadata.RenderState {
	return p.state
}

// SetState replaces the state vector, e.g. a layer preset with culling turned off.
func (p *RenderPipeline) SetState(state metadata.RenderState) {
	p.state = state
}

func (p *RenderPipeline) Bind() {
	p.ctx.ApplyRenderState(p.state)
	p.ctx.UseProgram(p.handle)
}

func (p *RenderPipeline) Unbind() {
	p.ctx.UseProgram(0)
}

/**
 * @brief Uploads a uniform by name. The location is resolved on every call;
 * names that are not active uniforms resolve to -1 and the driver ignores them.
 * Unsupported value types fail before anything reaches the context.
 */
func (p *RenderPipeline) SetUniform(name string, value interface{}) error {
	var upload func(location int32)
	switch v := value.(type) {
	case bool:
		i := int32(0)
		if v {
			i = 1
		}
		upload = func(l int32) { p.ctx.Uniform1i(l, i) }
	case int:
		upload = func(l int32) { p.ctx.Uniform1i(l, int32(v)) }
	case int32:
		upload = func(l int32) { p.ctx.Uniform1i(l, v) }
	case uint32:
		upload = func(l int32) { p.ctx.Uniform1i(l, int32(v)) }
	case float32:
		upload = func(l int32) { p.ctx.Uniform1f(l, v) }
	case math.Vec2:
		upload = func(l int32) { p.ctx.Uniform2f(l, v) }
	case math.Vec3:
		upload = func(l int32) { p.ctx.Uniform3f(l, v) }
	case math.Vec4:
		upload = func(l int32) { p.ctx.Uniform4f(l, v) }
	case math.Mat2:
		upload = func(l int32) { p.ctx.UniformMatrix2f(l, v) }
	case math.Mat3:
		upload = func(l int32) { p.ctx.UniformMatrix3f(l, v) }
	case math.Mat4:
		upload = func(l int32) { p.ctx.UniformMatrix4f(l, v) }
	default:
		return fmt.Errorf("uniform %s has unsupported type %T: %w", name, value, core.ErrInvalidArgument)
	}
	upload(p.ctx.UniformLocation(p.handle, name))
	return nil
}

// BindUniformBlock attaches a uniform buffer to the given binding slot.
func (p *RenderPipeline) BindUniformBlock(slot uint32, buffer GPUBuffer) {
	p.ctx.BindBufferBase(metadata.BufferTargetUniform, slot, buffer.Handle())
}

// BindBufferBlock attaches a storage buffer to the given binding slot.
func (p *RenderPipeline) BindBufferBlock(slot uint32, buffer GPUBuffer) {
	p.ctx.BindBufferBase(metadata.BufferTargetStorage, slot, buffer.Handle())
}

func (p *RenderPipeline) BindTexture(unit uint32, texture Sampler) {
	p.ctx.BindTextureUnit(unit, texture.Handle())
}
