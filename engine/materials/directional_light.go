package materials

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/components"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type directionalLightParameters struct {
	Color math.Vec4
}

/**
 * @brief Draws the wireframe gizmo of a directional light. It does not use
 * the global blocks: its own transforms go to slot 0 and the colour to slot 1.
 */
type DirectionalLight struct {
	pass       *renderer.RenderPass
	transforms *renderer.Buffer[transformsBlock]
	parameters *renderer.Buffer[directionalLightParameters]
}

func NewDirectionalLight(res Resources) (*DirectionalLight, error) {
	transforms, err := renderer.NewBuffer[transformsBlock](res.Context, 1)
	if err != nil {
		return nil, err
	}
	parameters, err := renderer.NewBuffer[directionalLightParameters](res.Context, 1)
	if err != nil {
		transforms.Destroy()
		return nil, err
	}

	p, err := loadPipeline(res, "directional_light", "directional_light", metadata.RenderLayerOpaque)
	if err != nil {
		transforms.Destroy()
		parameters.Destroy()
		return nil, fmt.Errorf("material DirectionalLight: %w", err)
	}
	state := p.State()
	state.CullFace = false
	state.Polygon = metadata.Polygon{Face: metadata.TriangleFaceFrontAndBack, Mode: metadata.PolygonModeLine}
	p.SetState(state)

	pass, err := renderer.NewRenderPass(p)
	if err != nil {
		transforms.Destroy()
		parameters.Destroy()
		return nil, err
	}
	return &DirectionalLight{pass: pass, transforms: transforms, parameters: parameters}, nil
}

func (d *DirectionalLight) Name() string {
	return "DirectionalLight"
}

func (d *DirectionalLight) RenderPass() *renderer.RenderPass {
	return d.pass
}

/**
 * @brief Draws the light meshes.
 * @param args Exactly: model math.Mat4, *components.Camera, colour math.Vec3.
 */
func (d *DirectionalLight) Draw(meshes []*renderer.Mesh, args ...interface{}) error {
	if len(args) != 3 {
		return fmt.Errorf("directional light expects 3 draw arguments, got %d: %w", len(args), core.ErrInvalidArgument)
	}
	model, ok := args[0].(math.Mat4)
	if !ok {
		return fmt.Errorf("directional light argument 0 is %T, want math.Mat4: %w", args[0], core.ErrInvalidArgument)
	}
	camera, ok := args[1].(*components.Camera)
	if !ok || camera == nil {
		return fmt.Errorf("directional light argument 1 is %T, want *components.Camera: %w", args[1], core.ErrInvalidArgument)
	}
	color, ok := args[2].(math.Vec3)
	if !ok {
		return fmt.Errorf("directional light argument 2 is %T, want math.Vec3: %w", args[2], core.ErrInvalidArgument)
	}

	for _, p := range d.pass.Pipelines() {
		p.Bind()
		if err := d.transforms.SetData(newTransformsBlock(model, camera.View(), camera.Projection())); err != nil {
			p.Unbind()
			return err
		}
		if err := d.parameters.SetData(directionalLightParameters{Color: color.ToVec4(1)}); err != nil {
			p.Unbind()
			return err
		}
		p.BindUniformBlock(0, d.transforms)
		p.BindUniformBlock(1, d.parameters)
		drawAll(meshes)
		p.Unbind()
	}
	return nil
}

// DrawModels draws each model with its transform; args are the camera and colour.
func (d *DirectionalLight) DrawModels(models []Renderable, args ...interface{}) error {
	for _, m := range models {
		if err := d.Draw(m.Meshes(), append([]interface{}{m.ModelMatrix()}, args...)...); err != nil {
			return err
		}
	}
	return nil
}

func (d *DirectionalLight) Controller(e Editor) {}

func (d *DirectionalLight) Destroy() {
	d.pass.Destroy()
	d.transforms.Destroy()
	d.parameters.Destroy()
}
