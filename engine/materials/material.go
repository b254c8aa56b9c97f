// Package materials composes render passes, parameter buffers and draw
// submission into reusable materials.
package materials

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/**
 * @brief The capability set every material implements. The Material
 * dispatcher drives it: the pass is created once, then for each pipeline and
 * draw AssemblePipeline uploads parameters and RenderPipeline issues draws.
 */
type Core interface {
	CreateRenderPass() (*renderer.RenderPass, error)
	AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error
	RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error
	ControllerCore(e Editor)
	DestroyCore()
}

// Drawable is what scenes hold: any material that can draw meshes.
type Drawable interface {
	Name() string
	Draw(meshes []*renderer.Mesh, args ...interface{}) error
	Controller(e Editor)
	Destroy()
}

// Renderable is a model a material can draw with its own transform.
type Renderable interface {
	Meshes() []*renderer.Mesh
	ModelMatrix() math.Mat4
}

/**
 * @brief The editor layer materials expose their tunables through. Each
 * call returns true when the user changed the value.
 */
type Editor interface {
	ColorEdit4(label string, value *math.Vec4) bool
	SliderFloat(label string, value *float32, min, max float32) bool
	DragFloat(label string, value *float32, speed float32) bool
	DragInt(label string, value *int32, speed float32, min, max int32) bool
	Checkbox(label string, value *bool) bool
	Texture(label string, texture *renderer.Texture)
}

// Textures resolves texture paths to shared textures.
type Textures interface {
	Acquire(path string) (*renderer.Texture, error)
	Release(path string)
}

/** @brief Everything a material needs to build its GPU objects. */
type Resources struct {
	Context renderer.Context
	// Shaders holds "<dir>/<name>.vert[.spv]" and "<dir>/<name>.frag[.spv]" files.
	Shaders fs.FS
	// Textures is optional; materials without it start with no channels bound.
	Textures Textures
}

/**
 * @brief Dispatches draws for a Core with the global parameter blocks bound
 * at slots 0..3 of every pipeline.
 */
type Material struct {
	name    string
	core    Core
	pass    *renderer.RenderPass
	globals *globalBuffers
}

func NewMaterial(res Resources, name string, c Core) (*Material, error) {
	globals, err := newGlobalBuffers(res.Context)
	if err != nil {
		c.DestroyCore()
		return nil, err
	}
	pass, err := c.CreateRenderPass()
	if err != nil {
		globals.destroy()
		c.DestroyCore()
		return nil, fmt.Errorf("material %s: %w", name, err)
	}
	core.LogDebug("material %s created with %d pipeline(s)", name, pass.Len())
	return &Material{name: name, core: c, pass: pass, globals: globals}, nil
}

func (m *Material) Name() string {
	return m.name
}

func (m *Material) RenderPass() *renderer.RenderPass {
	return m.pass
}

// ParseGlobalParameters accepts exactly one GlobalParameters with a camera.
func ParseGlobalParameters(args []interface{}) (GlobalParameters, error) {
	if len(args) != 1 {
		return GlobalParameters{}, fmt.Errorf("expected 1 draw argument, got %d: %w", len(args), core.ErrInvalidArgument)
	}
	params, ok := args[0].(GlobalParameters)
	if !ok {
		return GlobalParameters{}, fmt.Errorf("expected GlobalParameters, got %T: %w", args[0], core.ErrInvalidArgument)
	}
	if params.Camera == nil {
		return GlobalParameters{}, fmt.Errorf("global parameters without camera: %w", core.ErrInvalidArgument)
	}
	return params, nil
}

/**
 * @brief Draws meshes with every pipeline of the pass in order. The argument
 * list is validated before anything reaches the GPU.
 */
func (m *Material) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	params, err := ParseGlobalParameters(args)
	if err != nil {
		return fmt.Errorf("material %s: %w", m.name, err)
	}
	return m.draw(meshes, params)
}

func (m *Material) draw(meshes []*renderer.Mesh, params GlobalParameters) error {
	for _, p := range m.pass.Pipelines() {
		p.Bind()
		if err := m.globals.upload(p, params); err != nil {
			p.Unbind()
			return err
		}
		if err := m.core.AssemblePipeline(p, params); err != nil {
			p.Unbind()
			return fmt.Errorf("material %s: %w", m.name, err)
		}
		if err := m.core.RenderPipeline(p, meshes, params); err != nil {
			p.Unbind()
			return fmt.Errorf("material %s: %w", m.name, err)
		}
		p.Unbind()
	}
	return nil
}

// DrawModels draws each model with its own transform as the Model matrix.
func (m *Material) DrawModels(models []Renderable, params GlobalParameters) error {
	if params.Camera == nil {
		return fmt.Errorf("material %s: global parameters without camera: %w", m.name, core.ErrInvalidArgument)
	}
	for _, model := range models {
		params.Model = model.ModelMatrix()
		if err := m.draw(model.Meshes(), params); err != nil {
			return err
		}
	}
	return nil
}

func (m *Material) Controller(e Editor) {
	m.core.ControllerCore(e)
}

func (m *Material) Destroy() {
	m.pass.Destroy()
	m.globals.destroy()
	m.core.DestroyCore()
}

// loadPipeline builds a vertex+fragment pipeline preferring SPIR-V blobs
// over GLSL sources.
func loadPipeline(res Resources, dir, name string, layer metadata.RenderLayer) (*renderer.RenderPipeline, error) {
	vert, err := loadShader(res, metadata.ShaderTypeVertex, dir, name+".vert")
	if err != nil {
		return nil, err
	}
	defer vert.Destroy()

	frag, err := loadShader(res, metadata.ShaderTypeFragment, dir, name+".frag")
	if err != nil {
		return nil, err
	}
	defer frag.Destroy()

	p, err := renderer.NewRenderPipeline(res.Context, vert, frag)
	if err != nil {
		return nil, err
	}
	if err := p.SetRenderLayer(layer); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func loadShader(res Resources, shaderType metadata.ShaderType, dir, file string) (*renderer.Shader, error) {
	binary := path.Join(dir, file+".spv")
	if _, err := fs.Stat(res.Shaders, binary); err == nil {
		return renderer.NewShader(res.Context, shaderType, res.Shaders, binary)
	}
	return renderer.NewShader(res.Context, shaderType, res.Shaders, path.Join(dir, file))
}

// singlePass wraps one pipeline loaded from dir/name into a pass.
func singlePass(res Resources, dir, name string, layer metadata.RenderLayer) (*renderer.RenderPass, error) {
	p, err := loadPipeline(res, dir, name, layer)
	if err != nil {
		return nil, err
	}
	return renderer.NewRenderPass(p)
}

func drawAll(meshes []*renderer.Mesh) {
	for _, mesh := range meshes {
		mesh.Draw()
	}
}

func acquire(res Resources, path string) *renderer.Texture {
	if res.Textures == nil {
		return nil
	}
	t, err := res.Textures.Acquire(path)
	if err != nil {
		core.LogWarn("texture %s unavailable: %s", path, err)
		return nil
	}
	return t
}
