package materials

import (
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type toneParameters struct {
	Exposure        float32
	Gamma           float32
	GammaCorrection uint32
	_               float32
}

func newToneParameters(exposure, gamma float32, correct bool) toneParameters {
	t := toneParameters{Exposure: exposure, Gamma: gamma}
	if correct {
		t.GammaCorrection = 1
	}
	return t
}

/**
 * @brief Draws an equirectangular sky behind everything else. Channel0 is
 * the HDR sky texture.
 */
type Skybox struct {
	*Material
	Exposure        float32
	Gamma           float32
	GammaCorrection bool
	Channel0        *renderer.Texture

	res     Resources
	uniform *renderer.Buffer[toneParameters]
}

func NewSkybox(res Resources) (*Skybox, error) {
	s := &Skybox{Exposure: 1, Gamma: 2.2, GammaCorrection: true, res: res}
	m, err := NewMaterial(res, "Skybox", s)
	if err != nil {
		return nil, err
	}
	s.Material = m
	return s, nil
}

func (s *Skybox) CreateRenderPass() (*renderer.RenderPass, error) {
	var err error
	if s.uniform, err = renderer.NewBuffer[toneParameters](s.res.Context, 1); err != nil {
		return nil, err
	}
	return singlePass(s.res, "skybox", "skybox", metadata.RenderLayerBackground)
}

func (s *Skybox) AssemblePipeline(p *renderer.RenderPipeline, params GlobalParameters) error {
	if err := s.uniform.SetData(newToneParameters(s.Exposure, s.Gamma, s.GammaCorrection)); err != nil {
		return err
	}
	p.BindUniformBlock(renderer.UniformBufferBindingStart+0, s.uniform)
	if s.Channel0 != nil {
		p.BindTexture(0, s.Channel0)
	}
	return nil
}

func (s *Skybox) RenderPipeline(p *renderer.RenderPipeline, meshes []*renderer.Mesh, params GlobalParameters) error {
	if s.Channel0 == nil {
		return nil
	}
	drawAll(meshes)
	return nil
}

func (s *Skybox) ControllerCore(e Editor) {
	e.Texture("Sky", s.Channel0)
	e.Checkbox("Gamma Correction", &s.GammaCorrection)
	e.SliderFloat("Gamma", &s.Gamma, 0.1, 5)
	e.SliderFloat("Exposure", &s.Exposure, 0.1, 10)
}

func (s *Skybox) DestroyCore() {
	if s.uniform != nil {
		s.uniform.Destroy()
	}
}
