package materials

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type captureTransforms struct {
	View       math.Mat4
	Projection math.Mat4
}

/**
 * @brief Shared plumbing of the materials rendering into cube map faces.
 * They take no global parameters; View and Projection are set per face.
 */
type capture struct {
	name       string
	View       math.Mat4
	Projection math.Mat4

	pass       *renderer.RenderPass
	transforms *renderer.Buffer[captureTransforms]
}

func newCapture(res Resources, name, dir, file string, layer metadata.RenderLayer) (*capture, error) {
	transforms, err := renderer.NewBuffer[captureTransforms](res.Context, 1)
	if err != nil {
		return nil, err
	}
	p, err := loadPipeline(res, dir, file, layer)
	if err != nil {
		transforms.Destroy()
		return nil, fmt.Errorf("material %s: %w", name, err)
	}
	state := p.State()
	state.CullFace = false
	p.SetState(state)

	pass, err := renderer.NewRenderPass(p)
	if err != nil {
		transforms.Destroy()
		return nil, err
	}
	return &capture{
		name:       name,
		View:       math.NewMat4Identity(),
		Projection: math.NewMat4Identity(),
		pass:       pass,
		transforms: transforms,
	}, nil
}

func (c *capture) Name() string {
	return c.name
}

func (c *capture) RenderPass() *renderer.RenderPass {
	return c.pass
}

// parseCaptureArguments accepts either nothing or a view and a projection matrix.
func parseCaptureArguments(args []interface{}) (view, projection math.Mat4, ok bool, err error) {
	switch len(args) {
	case 0:
		return view, projection, false, nil
	case 2:
		var vok, pok bool
		view, vok = args[0].(math.Mat4)
		projection, pok = args[1].(math.Mat4)
		if !vok || !pok {
			return view, projection, false, fmt.Errorf("expected (view, projection Mat4), got (%T, %T): %w", args[0], args[1], core.ErrInvalidArgument)
		}
		return view, projection, true, nil
	}
	return view, projection, false, fmt.Errorf("expected 0 or 2 draw arguments, got %d: %w", len(args), core.ErrInvalidArgument)
}

/**
 * @brief Validates the arguments and the inputs reported by check before
 * touching the GPU, then runs assemble per pipeline. A (view, projection)
 * pair overrides the View and Projection fields.
 */
func (c *capture) draw(meshes []*renderer.Mesh, args []interface{}, check func() error, assemble func(p *renderer.RenderPipeline) error) error {
	view, projection, override, err := parseCaptureArguments(args)
	if err != nil {
		return fmt.Errorf("material %s: %w", c.name, err)
	}
	if check != nil {
		if err := check(); err != nil {
			return fmt.Errorf("material %s: %w", c.name, err)
		}
	}
	if override {
		c.View, c.Projection = view, projection
	}
	for _, p := range c.pass.Pipelines() {
		p.Bind()
		if err := c.transforms.SetData(captureTransforms{View: c.View, Projection: c.Projection}); err != nil {
			p.Unbind()
			return err
		}
		p.BindUniformBlock(TransformsBinding, c.transforms)
		if err := assemble(p); err != nil {
			p.Unbind()
			return err
		}
		drawAll(meshes)
		p.Unbind()
	}
	return nil
}

func (c *capture) Controller(e Editor) {}

func (c *capture) destroy() {
	c.pass.Destroy()
	c.transforms.Destroy()
}

// EquirectangularToCubemap projects an equirectangular texture onto a cube face.
type EquirectangularToCubemap struct {
	*capture
	Exposure        float32
	Gamma           float32
	GammaCorrection bool
	Channel0        *renderer.Texture

	uniform *renderer.Buffer[toneParameters]
}

func NewEquirectangularToCubemap(res Resources) (*EquirectangularToCubemap, error) {
	c, err := newCapture(res, "EquirectangularToCubemap", "pbr", "equirectangular_to_cubemap", metadata.RenderLayerBackground)
	if err != nil {
		return nil, err
	}
	uniform, err := renderer.NewBuffer[toneParameters](res.Context, 1)
	if err != nil {
		c.destroy()
		return nil, err
	}
	return &EquirectangularToCubemap{capture: c, Exposure: 1, Gamma: 2.2, GammaCorrection: true, uniform: uniform}, nil
}

func (m *EquirectangularToCubemap) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	check := func() error {
		if m.Channel0 == nil {
			return fmt.Errorf("no source texture: %w", core.ErrInvalidArgument)
		}
		return nil
	}
	return m.draw(meshes, args, check, func(p *renderer.RenderPipeline) error {
		if err := m.uniform.SetData(newToneParameters(m.Exposure, m.Gamma, m.GammaCorrection)); err != nil {
			return err
		}
		p.BindUniformBlock(renderer.UniformBufferBindingStart+0, m.uniform)
		p.BindTexture(0, m.Channel0)
		return nil
	})
}

func (m *EquirectangularToCubemap) Destroy() {
	m.destroy()
	m.uniform.Destroy()
}

// IrradianceConvolution integrates the diffuse irradiance of Map0.
type IrradianceConvolution struct {
	*capture
	Map0 *renderer.CubeMap
}

func NewIrradianceConvolution(res Resources) (*IrradianceConvolution, error) {
	c, err := newCapture(res, "IrradianceConvolution", "pbr", "irradiance_convolution", metadata.RenderLayerBackground)
	if err != nil {
		return nil, err
	}
	return &IrradianceConvolution{capture: c}, nil
}

func (m *IrradianceConvolution) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	return m.draw(meshes, args, m.checkMap, func(p *renderer.RenderPipeline) error {
		p.BindTexture(0, m.Map0)
		return nil
	})
}

func (m *IrradianceConvolution) checkMap() error {
	if m.Map0 == nil {
		return fmt.Errorf("no environment map: %w", core.ErrInvalidArgument)
	}
	return nil
}

func (m *IrradianceConvolution) Destroy() {
	m.destroy()
}

type prefilterParameters struct {
	Roughness  float32
	Resolution float32
	_          [2]float32
}

// Prefilter convolves Map0 with the GGX lobe of the given roughness.
type Prefilter struct {
	*capture
	Map0      *renderer.CubeMap
	Roughness float32

	uniform *renderer.Buffer[prefilterParameters]
}

func NewPrefilter(res Resources) (*Prefilter, error) {
	c, err := newCapture(res, "Prefilter", "pbr", "prefilter", metadata.RenderLayerBackground)
	if err != nil {
		return nil, err
	}
	uniform, err := renderer.NewBuffer[prefilterParameters](res.Context, 1)
	if err != nil {
		c.destroy()
		return nil, err
	}
	return &Prefilter{capture: c, uniform: uniform}, nil
}

func (m *Prefilter) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	check := func() error {
		if m.Map0 == nil {
			return fmt.Errorf("no environment map: %w", core.ErrInvalidArgument)
		}
		return nil
	}
	return m.draw(meshes, args, check, func(p *renderer.RenderPipeline) error {
		if err := m.uniform.SetData(prefilterParameters{
			Roughness:  math.Clamp(m.Roughness, 0, 1),
			Resolution: float32(m.Map0.Size),
		}); err != nil {
			return err
		}
		p.BindUniformBlock(renderer.UniformBufferBindingStart+0, m.uniform)
		p.BindTexture(0, m.Map0)
		return nil
	})
}

func (m *Prefilter) Destroy() {
	m.destroy()
	m.uniform.Destroy()
}

// BRDF integrates the split sum lookup table on a full screen canvas.
type BRDF struct {
	*capture
}

func NewBRDF(res Resources) (*BRDF, error) {
	c, err := newCapture(res, "BRDF", "pbr", "brdf", metadata.RenderLayerGeometry)
	if err != nil {
		return nil, err
	}
	return &BRDF{capture: c}, nil
}

func (m *BRDF) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	return m.draw(meshes, args, nil, func(p *renderer.RenderPipeline) error { return nil })
}

func (m *BRDF) Destroy() {
	m.destroy()
}
