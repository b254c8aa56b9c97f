package materials

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/components"
)

// Binding slots of the global uniform blocks.
const (
	TransformsBinding uint32 = 0
	CameraBinding     uint32 = 1
	LightingBinding   uint32 = 2
	TimeBinding       uint32 = 3
)

/** @brief Per frame scene values shared by every material. */
type SceneData struct {
	Time      float32
	DeltaTime float32
	Width     uint32
	Height    uint32

	MainLightDirection math.Vec3
	MainLightColor     math.Vec3
	AmbientLight       math.Vec3
}

func DefaultSceneData() SceneData {
	return SceneData{
		Width:              1,
		Height:             1,
		MainLightDirection: math.NewVec3(-1, -1, -1).Normalize(),
		MainLightColor:     math.NewVec3One(),
		AmbientLight:       math.NewVec3(0.2, 0.2, 0.2),
	}
}

/** @brief The arguments of every global material draw. */
type GlobalParameters struct {
	Camera *components.Camera
	Model  math.Mat4
	Scene  SceneData
}

func NewGlobalParameters(camera *components.Camera) GlobalParameters {
	return GlobalParameters{
		Camera: camera,
		Model:  math.NewMat4Identity(),
		Scene:  DefaultSceneData(),
	}
}

type transformsBlock struct {
	Model         math.Mat4
	View          math.Mat4
	Projection    math.Mat4
	ObjectToWorld math.Mat4
	ObjectToClip  math.Mat4
	WorldToObject math.Mat4
}

func newTransformsBlock(model, view, projection math.Mat4) transformsBlock {
	return transformsBlock{
		Model:         model,
		View:          view,
		Projection:    projection,
		ObjectToWorld: model,
		ObjectToClip:  model.Mul(view).Mul(projection),
		WorldToObject: model.Inverse(),
	}
}

type cameraBlock struct {
	Position math.Vec4
	Forward  math.Vec4
	// near, far, fov (degrees), aspect
	Clip math.Vec4
}

type lightingBlock struct {
	MainLightDirection math.Vec4
	MainLightColor     math.Vec4
	AmbientLight       math.Vec4
}

type timeBlock struct {
	// t/20, t, 2t, 3t
	Time math.Vec4
	// dt, 1/dt, 0, 0
	DeltaTime math.Vec4
	// width, height, 1+1/width, 1+1/height
	Resolution math.Vec4
}

type globalBuffers struct {
	transforms *renderer.Buffer[transformsBlock]
	camera     *renderer.Buffer[cameraBlock]
	lighting   *renderer.Buffer[lightingBlock]
	time       *renderer.Buffer[timeBlock]
}

func newGlobalBuffers(ctx renderer.Context) (*globalBuffers, error) {
	g := &globalBuffers{}
	var err error
	if g.transforms, err = renderer.NewBuffer[transformsBlock](ctx, 1); err != nil {
		return nil, err
	}
	if g.camera, err = renderer.NewBuffer[cameraBlock](ctx, 1); err != nil {
		g.destroy()
		return nil, err
	}
	if g.lighting, err = renderer.NewBuffer[lightingBlock](ctx, 1); err != nil {
		g.destroy()
		return nil, err
	}
	if g.time, err = renderer.NewBuffer[timeBlock](ctx, 1); err != nil {
		g.destroy()
		return nil, err
	}
	return g, nil
}

func (g *globalBuffers) upload(p *renderer.RenderPipeline, params GlobalParameters) error {
	cam := params.Camera
	scene := params.Scene

	if err := g.transforms.SetData(newTransformsBlock(params.Model, cam.View(), cam.Projection())); err != nil {
		return err
	}
	if err := g.camera.SetData(cameraBlock{
		Position: cam.Position.ToVec4(1),
		Forward:  cam.Forward().ToVec4(0),
		Clip:     math.NewVec4(cam.Near, cam.Far, cam.Fov, cam.Aspect()),
	}); err != nil {
		return err
	}
	if err := g.lighting.SetData(lightingBlock{
		MainLightDirection: scene.MainLightDirection.Normalize().ToVec4(0),
		MainLightColor:     scene.MainLightColor.ToVec4(1),
		AmbientLight:       scene.AmbientLight.ToVec4(1),
	}); err != nil {
		return err
	}

	invDelta := float32(0)
	if scene.DeltaTime > 0 {
		invDelta = 1 / scene.DeltaTime
	}
	w, h := float32(math.Max(scene.Width, 1)), float32(math.Max(scene.Height, 1))
	if err := g.time.SetData(timeBlock{
		Time:       math.NewVec4(scene.Time/20, scene.Time, scene.Time*2, scene.Time*3),
		DeltaTime:  math.NewVec4(scene.DeltaTime, invDelta, 0, 0),
		Resolution: math.NewVec4(w, h, 1+1/w, 1+1/h),
	}); err != nil {
		return err
	}

	p.BindUniformBlock(TransformsBinding, g.transforms)
	p.BindUniformBlock(CameraBinding, g.camera)
	p.BindUniformBlock(LightingBinding, g.lighting)
	p.BindUniformBlock(TimeBinding, g.time)
	return nil
}

func (g *globalBuffers) destroy() {
	if g.transforms != nil {
		g.transforms.Destroy()
	}
	if g.camera != nil {
		g.camera.Destroy()
	}
	if g.lighting != nil {
		g.lighting.Destroy()
	}
	if g.time != nil {
		g.time.Destroy()
	}
}
