package materials

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

// PickupColor marks selected models in the selection mask.
var PickupColor = math.NewVec4(1, 1, 1, 1)

/**
 * @brief Unlit flat colour per instance, used to render colour ids and the
 * selection mask.
 */
type SolidColorInstanced struct {
	*Instanced
	Colors []math.Vec4

	res    Resources
	colors *renderer.Buffer[math.Vec4]
}

func NewSolidColorInstanced(res Resources) (*SolidColorInstanced, error) {
	s := &SolidColorInstanced{res: res}
	var err error
	if s.colors, err = renderer.NewBuffer[math.Vec4](res.Context, MaxSamplerSize); err != nil {
		return nil, err
	}
	inst, err := NewInstanced(res, "SolidColorInstanced", s)
	if err != nil {
		return nil, err
	}
	s.Instanced = inst
	return s, nil
}

func (s *SolidColorInstanced) CreateRenderPass() (*renderer.RenderPass, error) {
	return singlePass(s.res, "solid_color", "solid_color_instanced", metadata.RenderLayerOpaque)
}

func (s *SolidColorInstanced) UpdateSampler(indices []int) error {
	return s.colors.SetData(gatherColors(s.Colors, indices, math.Vec4{})...)
}

func (s *SolidColorInstanced) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	p.BindBufferBlock(renderer.BufferBindingStart+0, s.colors)
	return nil
}

func (s *SolidColorInstanced) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	if len(meshes) == 0 {
		return nil
	}
	meshes[0].DrawInstanced(len(meshes))
	return nil
}

func (s *SolidColorInstanced) ControllerCore(e Editor) {}

func (s *SolidColorInstanced) DestroyCore() {
	s.colors.Destroy()
}

type edgeDetectionParameters struct {
	Color     math.Vec4
	Thickness float32
	_         [3]float32
}

/**
 * @brief Outlines the white areas of Channel0 over the current target. It is
 * drawn on a full screen canvas in the overlay layer.
 */
type EdgeDetection struct {
	*Material
	Color     math.Vec4
	Thickness float32
	Channel0  *renderer.Texture

	res     Resources
	uniform *renderer.Buffer[edgeDetectionParameters]
}

func NewEdgeDetection(res Resources) (*EdgeDetection, error) {
	ed := &EdgeDetection{
		Color:     math.NewVec4(1, 0.5, 0, 1),
		Thickness: 2,
		res:       res,
	}
	m, err := NewMaterial(res, "EdgeDetection", ed)
	if err != nil {
		return nil, err
	}
	ed.Material = m
	return ed, nil
}

func (ed *EdgeDetection) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if ed.uniform, err = renderer.NewBuffer[edgeDetectionParameters](ed.res.Context, 1); err != nil {
		return nil, err
	}
	return singlePass(ed.res, "edge_detection", "edge_detection", metadata.RenderLayerOverlay)
}

func (ed *EdgeDetection) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	if err := ed.uniform.SetData(edgeDetectionParameters{Color: ed.Color, Thickness: ed.Thickness}); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, ed.uniform)
	if ed.Channel0 != nil {
		p.BindTexture(0, ed.Channel0)
	}
	return nil
}

func (ed *EdgeDetection) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	drawAll(meshes)
	return nil
}

func (ed *EdgeDetection) ControllerCore(e Editor) {
	e.ColorEdit4("Outline", &ed.Color)
	e.SliderFloat("Thickness", &ed.Thickness, 1, 8)
}

func (ed *EdgeDetection) DestroyCore() {
	if ed.uniform != nil {
		ed.uniform.Destroy()
	}
}
