package materials

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

const (
	BrickDiffusePath = "textures/chapter7/Brick_Diffuse.JPG"
	BrickNormalPath  = "textures/chapter7/Brick_Normal.JPG"
)

type singleTextureMaterial struct {
	Color    math.Vec4
	Specular math.Vec4
	Gloss    float32
	_        [3]float32
}

// SingleTexture is Blinn-Phong shading with an albedo texture on unit 0.
type SingleTexture struct {
	*Material
	Color    math.Vec4
	Specular math.Vec4
	Gloss    float32
	Channel0 *renderer.Texture

	res     Resources
	uniform *renderer.Buffer[singleTextureMaterial]
}

func NewSingleTexture(res Resources) (*SingleTexture, error) {
	s := &SingleTexture{
		Color:    math.NewVec4One(),
		Specular: math.NewVec4One(),
		Gloss:    20,
		res:      res,
	}
	m, err := NewMaterial(res, "SingleTexture", s)
	if err != nil {
		return nil, err
	}
	s.Material = m
	return s, nil
}

func (s *SingleTexture) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if s.uniform, err = renderer.NewBuffer[singleTextureMaterial](s.res.Context, 1); err != nil {
		return nil, err
	}
	if s.Channel0 == nil {
		s.Channel0 = acquire(s.res, BrickDiffusePath)
	}
	return singlePass(s.res, "chapter7", "single_texture", metadata.RenderLayerOpaque)
}

func (s *SingleTexture) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	if err := s.uniform.SetData(singleTextureMaterial{
		Color:    s.Color,
		Specular: s.Specular,
		Gloss:    s.Gloss,
	}); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, s.uniform)
	if s.Channel0 != nil {
		p.BindTexture(0, s.Channel0)
	}
	return nil
}

func (s *SingleTexture) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	drawAll(meshes)
	return nil
}

func (s *SingleTexture) ControllerCore(e Editor) {
	e.ColorEdit4("Color", &s.Color)
	e.Texture("Texture", s.Channel0)
	e.ColorEdit4("Specular", &s.Specular)
	e.SliderFloat("Gloss", &s.Gloss, 8, 256)
}

func (s *SingleTexture) DestroyCore() {
	if s.uniform != nil {
		s.uniform.Destroy()
	}
	if s.Channel0 != nil && s.res.Textures != nil {
		s.res.Textures.Release(BrickDiffusePath)
	}
}

type normalMapMaterial struct {
	Color     math.Vec4
	BumpScale float32
	_         [3]float32
	Specular  math.Vec4
	Gloss     float32
	_         [3]float32
}

/**
 * @brief Blinn-Phong with a tangent space normal map transformed to world
 * space in the fragment stage. Albedo on unit 0, normals on unit 1.
 */
type NormalMapWorldSpace struct {
	*Material
	Color     math.Vec4
	BumpScale float32
	Specular  math.Vec4
	Gloss     float32
	Channel0  *renderer.Texture
	Channel1  *renderer.Texture

	res     Resources
	uniform *renderer.Buffer[normalMapMaterial]
}

func NewNormalMapWorldSpace(res Resources) (*NormalMapWorldSpace, error) {
	n := &NormalMapWorldSpace{
		Color:     math.NewVec4One(),
		BumpScale: 1,
		Specular:  math.NewVec4One(),
		Gloss:     20,
		res:       res,
	}
	m, err := NewMaterial(res, "NormalMapWorldSpace", n)
	if err != nil {
		return nil, err
	}
	n.Material = m
	return n, nil
}

func (n *NormalMapWorldSpace) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if n.uniform, err = renderer.NewBuffer[normalMapMaterial](n.res.Context, 1); err != nil {
		return nil, err
	}
	n.Channel0 = acquire(n.res, BrickDiffusePath)
	n.Channel1 = acquire(n.res, BrickNormalPath)
	return singlePass(n.res, "chapter7", "normal_map_world_space", metadata.RenderLayerOpaque)
}

func (n *NormalMapWorldSpace) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	if err := n.uniform.SetData(normalMapMaterial{
		Color:     n.Color,
		BumpScale: n.BumpScale,
		Specular:  n.Specular,
		Gloss:     n.Gloss,
	}); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, n.uniform)
	if n.Channel0 != nil {
		p.BindTexture(0, n.Channel0)
	}
	if n.Channel1 != nil {
		p.BindTexture(1, n.Channel1)
	}
	return nil
}

func (n *NormalMapWorldSpace) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	drawAll(meshes)
	return nil
}

func (n *NormalMapWorldSpace) ControllerCore(e Editor) {
	e.ColorEdit4("Color", &n.Color)
	e.Texture("Main Tex", n.Channel0)
	e.Texture("Normal Map", n.Channel1)
	e.DragFloat("Normal Scale", &n.BumpScale, 0.01)
	e.ColorEdit4("Specular", &n.Specular)
	e.SliderFloat("Gloss", &n.Gloss, 8, 256)
}

func (n *NormalMapWorldSpace) DestroyCore() {
	if n.uniform != nil {
		n.uniform.Destroy()
	}
	if n.res.Textures != nil {
		if n.Channel0 != nil {
			n.res.Textures.Release(BrickDiffusePath)
		}
		if n.Channel1 != nil {
			n.res.Textures.Release(BrickNormalPath)
		}
	}
}
