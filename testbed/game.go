// Package testbed is a sample application exercising every material, the
// PBR baker and colour id picking.
package testbed

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine"
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/pbr"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/scene"
)

const (
	SkyTexturePath = "textures/skybox/studio.hdr"
	// Scattered instanced cubes.
	instanceCount  = 64
	instanceRadius = 12
)

var tempMoveSpeed float32 = 0.5

type TestGame struct {
	engine *engine.Engine

	scene      *scene.Scene
	controller *scene.SceneController
	pickup     *scene.PickupController
	ids        *core.IdentifierPool

	skybox    *materials.Skybox
	grid      *materials.Grid
	light     *materials.DirectionalLight
	diffuse   *materials.DiffuseVertexLevel
	textured  *materials.SingleTexture
	normalMap *materials.NormalMapWorldSpace
	instanced *materials.DiffusePixelLevelInstanced
	baker     *pbr.Baker

	cube   *renderer.Mesh
	sphere *renderer.Mesh
	plane  *renderer.Mesh
	canvas *renderer.Mesh

	models     []*scene.Model
	scattered  []*scene.Model
	lightModel *scene.Model
	sky        *renderer.Texture

	// Destroyed in reverse order on shutdown.
	owned []interface{ Destroy() }
}

func NewTestGame() *TestGame {
	return &TestGame{
		controller: scene.NewSceneController(),
		ids:        core.NewIdentifierPool(),
	}
}

func (g *TestGame) own(d interface{ Destroy() }) {
	g.owned = append(g.owned, d)
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")
	g.engine = e

	res := e.Resources()
	geometry := e.Systems().Geometry()

	g.scene = scene.NewScene(e.Context(), e.Input(), "Scene")
	g.scene.Samples = e.Config().App.Samples
	g.scene.Camera.SetPosition(math.NewVec3(0, 3, 10))
	g.own(g.scene)

	var err error
	if g.cube, err = geometry.Cube(1); err != nil {
		return err
	}
	if g.sphere, err = geometry.Sphere(32); err != nil {
		return err
	}
	if g.plane, err = geometry.Plane(20); err != nil {
		return err
	}
	if g.canvas, err = geometry.Canvas(); err != nil {
		return err
	}

	if err := g.createMaterials(res); err != nil {
		return err
	}
	if err := g.createModels(); err != nil {
		return err
	}

	if g.pickup, err = scene.NewPickupController(res, g.controller, g.canvas); err != nil {
		return err
	}
	g.own(g.pickup)
	if g.baker, err = pbr.NewBaker(res, g.cube, g.canvas); err != nil {
		return err
	}
	g.own(g.baker)

	// The sky decodes in the background; bake once its pixels are on the GPU.
	if g.sky, err = e.Systems().Textures().Acquire(SkyTexturePath); err != nil {
		core.LogWarn("no sky texture: %s", err)
	}
	g.skybox.Channel0 = g.sky
	e.Events().Register(core.EVENT_CODE_TEXTURE_LOADED, g, g.onTextureLoaded)
	e.Events().Register(core.EVENT_CODE_KEY_PRESSED, g, g.onKey)

	g.controller.OnSelectionChanged(func() {
		for _, m := range g.controller.Selected() {
			core.LogInfo("selected %s", m.Name)
		}
	})
	return nil
}

func (g *TestGame) createMaterials(res materials.Resources) error {
	var err error
	if g.skybox, err = materials.NewSkybox(res); err != nil {
		return err
	}
	g.own(g.skybox)
	if g.grid, err = materials.NewGrid(res); err != nil {
		return err
	}
	g.own(g.grid)
	if g.light, err = materials.NewDirectionalLight(res); err != nil {
		return err
	}
	g.own(g.light)
	if g.diffuse, err = materials.NewDiffuseVertexLevel(res); err != nil {
		return err
	}
	g.own(g.diffuse)
	g.diffuse.Diffuse = math.NewVec4(0.8, 0.3, 0.2, 1)
	if g.textured, err = materials.NewSingleTexture(res); err != nil {
		return err
	}
	g.own(g.textured)
	if g.normalMap, err = materials.NewNormalMapWorldSpace(res); err != nil {
		return err
	}
	g.own(g.normalMap)
	if g.instanced, err = materials.NewDiffusePixelLevelInstanced(res); err != nil {
		return err
	}
	g.own(g.instanced)
	return nil
}

func (g *TestGame) createModels() error {
	add := func(name string, mesh *renderer.Mesh, material materials.Drawable, position math.Vec3) (*scene.Model, error) {
		m, err := scene.NewModel(g.ids, name, []*renderer.Mesh{mesh}, material)
		if err != nil {
			return nil, err
		}
		m.Transform.SetPosition(position)
		g.models = append(g.models, m)
		return m, nil
	}

	if _, err := add("Sphere", g.sphere, g.diffuse, math.NewVec3(-3, 1, 0)); err != nil {
		return err
	}
	if _, err := add("Textured Cube", g.cube, g.textured, math.NewVec3(0, 0.5, 0)); err != nil {
		return err
	}
	if _, err := add("Normal Mapped Cube", g.cube, g.normalMap, math.NewVec3(3, 0.5, 0)); err != nil {
		return err
	}

	math.SeedRandom(7)
	for i := 0; i < instanceCount; i++ {
		m, err := scene.NewModel(g.ids, fmt.Sprintf("Instance %d", i), []*renderer.Mesh{g.cube}, g.instanced)
		if err != nil {
			return err
		}
		m.Transform.SetPositionRotationScale(
			math.NewVec3(math.RandomInRange(-instanceRadius, instanceRadius), math.RandomInRange(0.2, 4), math.RandomInRange(-instanceRadius, -4)),
			math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.RandomInRange(0, 2*math.K_PI)),
			math.NewVec3One().MulScalar(math.RandomInRange(0.2, 0.6)),
		)
		g.instanced.Diffuse = append(g.instanced.Diffuse, math.NewVec4(math.RandomInRange(0.2, 1), math.RandomInRange(0.2, 1), math.RandomInRange(0.2, 1), 1))
		g.scattered = append(g.scattered, m)
	}

	light, err := scene.NewModel(g.ids, "Main Light", []*renderer.Mesh{g.sphere}, g.light)
	if err != nil {
		return err
	}
	light.Transform.SetPositionRotationScale(math.NewVec3(4, 6, 4), math.NewQuatIdentity(), math.NewVec3(0.3, 0.3, 0.3))
	g.lightModel = light

	g.controller.Add(g.models...)
	g.controller.Add(g.scattered...)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	g.scene.Update(deltaTime)

	// Perform a small rotation on the first model.
	rotation := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), tempMoveSpeed*float32(deltaTime))
	g.models[0].Transform.Rotate(rotation)

	if g.engine.Metrics().FrameCount()%600 == 599 {
		core.LogDebug("FPS: %5.1f (%4.1fms)", g.engine.Metrics().FPS(), g.engine.Metrics().FrameTime())
	}
	return g.pickup.Update(g.scene.PickInput())
}

func (g *TestGame) Render(deltaTime float64) error {
	params := g.scene.Parameters()

	if err := g.pickup.Render(params); err != nil {
		return err
	}

	if err := g.scene.Begin(); err != nil {
		return err
	}
	err := g.renderScene(params)
	g.scene.End()
	if err != nil {
		return err
	}
	g.scene.Frame().Present()
	return nil
}

func (g *TestGame) renderScene(params materials.GlobalParameters) error {
	if err := g.skybox.Draw([]*renderer.Mesh{g.cube}, params); err != nil {
		return err
	}
	for _, m := range g.models {
		if err := m.Render(params); err != nil {
			return err
		}
	}
	scattered := make([]materials.Renderable, len(g.scattered))
	for i, m := range g.scattered {
		scattered[i] = m
	}
	if err := g.instanced.DrawModels(scattered, params); err != nil {
		return err
	}
	light := []materials.Renderable{g.lightModel}
	if err := g.light.DrawModels(light, params.Camera, params.Scene.MainLightColor); err != nil {
		return err
	}
	if err := g.grid.Draw([]*renderer.Mesh{g.plane}, params); err != nil {
		return err
	}
	return g.pickup.PostEffects(params)
}

func (g *TestGame) Resize(width uint32, height uint32) error {
	g.scene.Resize(width, height)
	return nil
}

func (g *TestGame) onTextureLoaded(ctx core.EventContext) bool {
	name, ok := ctx.Data.(string)
	if !ok || name != SkyTexturePath {
		return false
	}
	if err := g.baker.Bake(g.skybox); err != nil {
		core.LogError("failed to bake environment: %s", err)
	}
	return false
}

func (g *TestGame) onKey(ctx core.EventContext) bool {
	ke, ok := ctx.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	switch ke.KeyCode {
	case core.KEY_F1:
		g.controller.SelectObjects()
	case core.KEY_F2:
		g.controller.SelectObjects(g.models...)
	}
	return false
}

func (g *TestGame) Shutdown() error {
	g.engine.Events().Unregister(core.EVENT_CODE_TEXTURE_LOADED, g)
	g.engine.Events().Unregister(core.EVENT_CODE_KEY_PRESSED, g)

	for _, m := range append(append(g.models, g.scattered...), g.lightModel) {
		if m != nil {
			m.Release()
		}
	}
	for i := len(g.owned) - 1; i >= 0; i-- {
		g.owned[i].Destroy()
	}
	g.owned = nil

	if g.sky != nil {
		g.engine.Systems().Textures().Release(SkyTexturePath)
		g.sky = nil
	}
	return nil
}
