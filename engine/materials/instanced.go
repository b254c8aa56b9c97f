package materials

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
)

// MaxSamplerSize is the initial capacity of per instance storage buffers.
const MaxSamplerSize = 1024

// InstanceTransformsBinding is the storage slot of the per instance transforms.
const InstanceTransformsBinding uint32 = 0

/**
 * @brief A Core drawing many models in one instanced call. UpdateSampler
 * receives the index of every drawn instance so per instance data can be
 * gathered in draw order.
 */
type InstancedCore interface {
	Core
	UpdateSampler(indices []int) error
}

type instanceTransforms struct {
	Model         math.Mat4
	WorldToObject math.Mat4
}

/**
 * @brief Wraps a Material so one draw covers all models. Each model
 * contributes its first mesh and its transform.
 */
type Instanced struct {
	*Material
	core       InstancedCore
	transforms *renderer.Buffer[instanceTransforms]
}

type instancedAdapter struct {
	InstancedCore
	transforms *renderer.Buffer[instanceTransforms]
}

func (a *instancedAdapter) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	p.BindBufferBlock(InstanceTransformsBinding, a.transforms)
	return a.InstancedCore.AssemblePipeline(p, params)
}

func NewInstanced(res Resources, name string, c InstancedCore) (*Instanced, error) {
	transforms, err := renderer.NewBuffer[instanceTransforms](res.Context, MaxSamplerSize)
	if err != nil {
		c.DestroyCore()
		return nil, err
	}
	m, err := NewMaterial(res, name, &instancedAdapter{InstancedCore: c, transforms: transforms})
	if err != nil {
		transforms.Destroy()
		return nil, err
	}
	return &Instanced{Material: m, core: c, transforms: transforms}, nil
}

// DrawModels draws every model in a single instanced call.
func (i *Instanced) DrawModels(models []Renderable, params GlobalParameters) error {
	if params.Camera == nil {
		return fmt.Errorf("material %s: global parameters without camera: %w", i.name, core.ErrInvalidArgument)
	}
	if len(models) == 0 {
		return nil
	}
	meshes := make([]*renderer.Mesh, 0, len(models))
	records := make([]instanceTransforms, 0, len(models))
	indices := make([]int, 0, len(models))
	for index, model := range models {
		ms := model.Meshes()
		if len(ms) == 0 {
			return fmt.Errorf("material %s: model %d has no mesh: %w", i.name, index, core.ErrInvalidArgument)
		}
		world := model.ModelMatrix()
		meshes = append(meshes, ms[0])
		records = append(records, instanceTransforms{Model: world, WorldToObject: world.Inverse()})
		indices = append(indices, index)
	}
	return i.drawInstances(meshes, records, indices, params)
}

/**
 * @brief Draws each mesh as a single instance placed by params.Model, so an
 * instanced material also works for one model. The instance takes the
 * per instance data of index 0.
 */
func (i *Instanced) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	params, err := ParseGlobalParameters(args)
	if err != nil {
		return fmt.Errorf("material %s: %w", i.name, err)
	}
	record := instanceTransforms{Model: params.Model, WorldToObject: params.Model.Inverse()}
	for _, mesh := range meshes {
		if err := i.drawInstances([]*renderer.Mesh{mesh}, []instanceTransforms{record}, []int{0}, params); err != nil {
			return err
		}
	}
	return nil
}

func (i *Instanced) drawInstances(meshes []*renderer.Mesh, records []instanceTransforms, indices []int, params GlobalParameters) error {
	if err := i.transforms.SetData(records...); err != nil {
		return err
	}
	if err := i.core.UpdateSampler(indices); err != nil {
		return fmt.Errorf("material %s: %w", i.name, err)
	}
	return i.draw(meshes, params)
}

func (i *Instanced) Destroy() {
	i.Material.Destroy()
	i.transforms.Destroy()
}
