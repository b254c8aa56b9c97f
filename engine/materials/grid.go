package materials

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type gridParameters struct {
	Near           float32
	Far            float32
	PrimaryScale   float32
	SecondaryScale float32
	GridIntensity  float32
	AxisIntensity  float32
	Fade           float32
	_              float32
}

/**
 * @brief An infinite editor grid. Distance selects the power of two cell
 * size and fades between neighbouring levels.
 */
type Grid struct {
	*Material
	Distance float32

	res        Resources
	parameters *renderer.Buffer[gridParameters]
}

func NewGrid(res Resources) (*Grid, error) {
	g := &Grid{Distance: 6, res: res}
	m, err := NewMaterial(res, "Grid", g)
	if err != nil {
		return nil, err
	}
	g.Material = m
	return g, nil
}

func (g *Grid) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if g.parameters, err = renderer.NewBuffer[gridParameters](g.res.Context, 1); err != nil {
		return nil, err
	}
	return singlePass(g.res, "grid", "grid", metadata.RenderLayerTransparent)
}

// gridLevels returns the fade between the two visible grid levels and their scales.
func gridLevels(distance float32) (fade, primary, secondary float32) {
	logDistance := math.Log2(distance)
	lower := math.Pow(2, math.Floor(logDistance))
	upper := math.Pow(2, math.Floor(logDistance)+1)
	fade = (distance - lower) / (upper - lower)

	level := -math.Floor(logDistance)
	primary = math.Pow(2, level)
	secondary = math.Pow(2, level+1)
	return fade, primary, secondary
}

func (g *Grid) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	fade, primary, secondary := gridLevels(g.Distance)
	if err := g.parameters.SetData(gridParameters{
		Near:           params.Camera.Near,
		Far:            params.Camera.Far * 0.2,
		PrimaryScale:   primary,
		SecondaryScale: secondary,
		GridIntensity:  0.2,
		AxisIntensity:  0.3 / primary,
		Fade:           fade,
	}); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, g.parameters)
	return nil
}

func (g *Grid) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	drawAll(meshes)
	return nil
}

func (g *Grid) ControllerCore(e Editor) {
	e.SliderFloat("Distance", &g.Distance, 0, 10)
}

func (g *Grid) DestroyCore() {
	if g.parameters != nil {
		g.parameters.Destroy()
	}
}
