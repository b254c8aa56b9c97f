package materials

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type diffuseMaterial struct {
	Diffuse math.Vec4
}

// DiffuseVertexLevel is Lambert lighting evaluated per vertex.
type DiffuseVertexLevel struct {
	*Material
	Diffuse math.Vec4

	res     Resources
	uniform *renderer.Buffer[diffuseMaterial]
}

func NewDiffuseVertexLevel(res Resources) (*DiffuseVertexLevel, error) {
	d := &DiffuseVertexLevel{Diffuse: math.NewVec4One(), res: res}
	m, err := NewMaterial(res, "DiffuseVertexLevel", d)
	if err != nil {
		return nil, err
	}
	d.Material = m
	return d, nil
}

func (d *DiffuseVertexLevel) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if d.uniform, err = renderer.NewBuffer[diffuseMaterial](d.res.Context, 1); err != nil {
		return nil, err
	}
	return singlePass(d.res, "chapter6", "diffuse_vertex_level", metadata.RenderLayerOpaque)
}

func (d *DiffuseVertexLevel) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	if err := d.uniform.SetData(diffuseMaterial{Diffuse: d.Diffuse}); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, d.uniform)
	return nil
}

func (d *DiffuseVertexLevel) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	drawAll(meshes)
	return nil
}

func (d *DiffuseVertexLevel) ControllerCore(e Editor) {
	e.ColorEdit4("Diffuse", &d.Diffuse)
}

func (d *DiffuseVertexLevel) DestroyCore() {
	if d.uniform != nil {
		d.uniform.Destroy()
	}
}

/**
 * @brief Per pixel Lambert lighting drawn instanced. Diffuse holds either one
 * colour for every instance or one colour per model index.
 */
type DiffusePixelLevelInstanced struct {
	*Instanced
	Diffuse []math.Vec4

	res     Resources
	diffuse *renderer.Buffer[math.Vec4]
}

func NewDiffusePixelLevelInstanced(res Resources) (*DiffusePixelLevelInstanced, error) {
	d := &DiffusePixelLevelInstanced{res: res}
	var err error
	if d.diffuse, err = renderer.NewBuffer[math.Vec4](res.Context, MaxSamplerSize); err != nil {
		return nil, err
	}
	inst, err := NewInstanced(res, "DiffusePixelLevelInstanced", d)
	if err != nil {
		return nil, err
	}
	d.Instanced = inst
	return d, nil
}

func (d *DiffusePixelLevelInstanced) CreateRenderPass() (*renderer.RenderPass, error) {
	return singlePass(d.res, "chapter6", "diffuse_pixel_level_instanced", metadata.RenderLayerOpaque)
}

func (d *DiffusePixelLevelInstanced) UpdateSampler(indices []int) error {
	return d.diffuse.SetData(gatherColors(d.Diffuse, indices, math.Vec4{})...)
}

func (d *DiffusePixelLevelInstanced) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	p.BindBufferBlock(renderer.BufferBindingStart+0, d.diffuse)
	return nil
}

func (d *DiffusePixelLevelInstanced) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	if len(meshes) == 0 {
		return nil
	}
	meshes[0].DrawInstanced(len(meshes))
	return nil
}

func (d *DiffusePixelLevelInstanced) ControllerCore(e Editor) {}

func (d *DiffusePixelLevelInstanced) DestroyCore() {
	d.diffuse.Destroy()
}

/**
 * @brief Picks the colour of every drawn instance. A single colour is
 * broadcast; otherwise colours are looked up by model index and indices
 * without a colour get fallback.
 */
func gatherColors(colors []math.Vec4, indices []int, fallback math.Vec4) []math.Vec4 {
	out := make([]math.Vec4, len(indices))
	switch {
	case len(colors) == 0:
		for i := range out {
			out[i] = fallback
		}
	case len(colors) == 1:
		for i := range out {
			out[i] = colors[0]
		}
	default:
		for i, index := range indices {
			if index >= 0 && index < len(colors) {
				out[i] = colors[index]
			} else {
				out[i] = fallback
			}
		}
	}
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}
