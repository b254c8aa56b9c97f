package materials

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/components"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

func shaderSources() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range []string{
		"grid/grid",
		"directional_light/directional_light",
		"chapter6/diffuse_vertex_level",
		"chapter6/diffuse_pixel_level_instanced",
		"chapter7/single_texture",
		"chapter7/normal_map_world_space",
		"solid_color/solid_color_instanced",
		"edge_detection/edge_detection",
		"skybox/skybox",
		"pbr/equirectangular_to_cubemap",
		"pbr/irradiance_convolution",
		"pbr/prefilter",
		"pbr/brdf",
	} {
		fsys[name+".vert"] = &fstest.MapFile{Data: []byte("#version 460\nvoid main() {}\n")}
		fsys[name+".frag"] = &fstest.MapFile{Data: []byte("#version 460\nvoid main() {}\n")}
	}
	return fsys
}

func newResources() (Resources, *rendertest.Context) {
	ctx := rendertest.NewContext()
	return Resources{Context: ctx, Shaders: shaderSources()}, ctx
}

func triangle(t *testing.T, ctx renderer.Context) *renderer.Mesh {
	t.Helper()
	m, err := renderer.NewMesh(ctx, "triangle", []math.Vertex3D{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(0, 1, 0)},
	}, []uint32{0, 1, 2})
	require.NoError(t, err)
	return m
}

type model struct {
	meshes []*renderer.Mesh
	world  math.Mat4
}

func (m model) Meshes() []*renderer.Mesh { return m.meshes }
func (m model) ModelMatrix() math.Mat4   { return m.world }

// dispatchOps keeps only the commands that describe draw dispatch.
func dispatchOps(ctx *rendertest.Context) []rendertest.Command {
	var out []rendertest.Command
	for _, cmd := range ctx.Commands() {
		switch cmd.Op {
		case rendertest.OpStateApply, rendertest.OpProgramActivate, rendertest.OpBufferBind,
			rendertest.OpTextureBind, rendertest.OpDrawCall, rendertest.OpProgramDeactivate:
			out = append(out, cmd)
		}
	}
	return out
}

func TestDrawRejectsInvalidArgumentsBeforeTheGPU(t *testing.T) {
	res, ctx := newResources()
	grid, err := NewGrid(res)
	require.NoError(t, err)
	defer grid.Destroy()
	meshes := []*renderer.Mesh{triangle(t, ctx)}

	cases := map[string][]interface{}{
		"no arguments":   nil,
		"wrong type":     {components.NewCamera()},
		"nil camera":     {GlobalParameters{}},
		"extra argument": {NewGlobalParameters(components.NewCamera()), 1},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			ctx.Reset()
			err := grid.Draw(meshes, args...)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
			assert.Equal(t, 0, ctx.Calls())
		})
	}
}

func TestMaterialDispatchOrder(t *testing.T) {
	res, ctx := newResources()
	grid, err := NewGrid(res)
	require.NoError(t, err)
	defer grid.Destroy()
	mesh := triangle(t, ctx)

	ctx.Reset()
	require.NoError(t, grid.Draw([]*renderer.Mesh{mesh}, NewGlobalParameters(components.NewCamera())))

	ops := dispatchOps(ctx)
	require.Len(t, ops, 9)
	assert.Equal(t, rendertest.OpStateApply, ops[0].Op)
	state := ops[0].Args[0].(metadata.RenderState)
	assert.False(t, state.DepthWrite)
	assert.True(t, state.Blend)

	assert.Equal(t, rendertest.OpProgramActivate, ops[1].Op)
	for i, slot := range []uint32{TransformsBinding, CameraBinding, LightingBinding, TimeBinding, renderer.UniformBufferBindingStart} {
		bind := ops[2+i]
		assert.Equal(t, rendertest.OpBufferBind, bind.Op)
		assert.Equal(t, metadata.BufferTargetUniform, bind.Args[0])
		assert.Equal(t, slot, bind.Args[1])
	}
	assert.Equal(t, rendertest.OpDrawCall, ops[7].Op)
	assert.Equal(t, mesh.Handle(), ops[7].Args[0])
	assert.Equal(t, int32(1), ops[7].Args[2])
	assert.Equal(t, rendertest.OpProgramDeactivate, ops[8].Op)
}

func TestDrawModelsUsesEachModelMatrix(t *testing.T) {
	res, ctx := newResources()
	diffuse, err := NewDiffuseVertexLevel(res)
	require.NoError(t, err)
	defer diffuse.Destroy()
	mesh := triangle(t, ctx)

	models := []Renderable{
		model{meshes: []*renderer.Mesh{mesh}, world: math.NewMat4Translation(math.NewVec3(1, 0, 0))},
		model{meshes: []*renderer.Mesh{mesh, mesh}, world: math.NewMat4Translation(math.NewVec3(0, 2, 0))},
	}
	ctx.Reset()
	require.NoError(t, diffuse.DrawModels(models, NewGlobalParameters(components.NewCamera())))
	assert.Equal(t, 3, ctx.Count(rendertest.OpDrawCall))
	assert.Equal(t, 2, ctx.Count(rendertest.OpProgramActivate))

	assert.ErrorIs(t, diffuse.DrawModels(models, GlobalParameters{}), core.ErrInvalidArgument)
}

func TestLinkFailureReleasesEverything(t *testing.T) {
	res, ctx := newResources()
	ctx.LinkLog = "error: varying vNormal not written"

	_, err := NewGrid(res)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrShaderLink)
	for _, kind := range []string{rendertest.KindBuffer, rendertest.KindShader, rendertest.KindProgram} {
		assert.Equal(t, 0, ctx.Live(kind), kind)
	}

	_, err = NewSolidColorInstanced(res)
	require.Error(t, err)
	assert.Equal(t, 0, ctx.Live(rendertest.KindBuffer))

	_, err = NewPrefilter(res)
	require.Error(t, err)
	assert.Equal(t, 0, ctx.Live(rendertest.KindBuffer))
}

func TestMissingShaderSource(t *testing.T) {
	ctx := rendertest.NewContext()
	_, err := NewSkybox(Resources{Context: ctx, Shaders: fstest.MapFS{}})
	require.Error(t, err)
	assert.Equal(t, 0, ctx.Live(rendertest.KindBuffer))
}

func TestDestroyReleasesAllResources(t *testing.T) {
	res, ctx := newResources()
	grid, err := NewGrid(res)
	require.NoError(t, err)
	edge, err := NewEdgeDetection(res)
	require.NoError(t, err)
	colors, err := NewSolidColorInstanced(res)
	require.NoError(t, err)
	light, err := NewDirectionalLight(res)
	require.NoError(t, err)

	for _, d := range []Drawable{grid, edge, colors, light} {
		d.Destroy()
	}
	assert.Equal(t, 0, ctx.Live(rendertest.KindBuffer))
	assert.Equal(t, 0, ctx.Live(rendertest.KindProgram))
	assert.Equal(t, 0, ctx.Live(rendertest.KindShader))
}

func TestGridLevels(t *testing.T) {
	fade, primary, secondary := gridLevels(6)
	assert.InDelta(t, 0.5, fade, 1e-5)
	assert.InDelta(t, 0.25, primary, 1e-6)
	assert.InDelta(t, 0.5, secondary, 1e-6)

	fade, primary, secondary = gridLevels(1)
	assert.InDelta(t, 0, fade, 1e-6)
	assert.InDelta(t, 1, primary, 1e-6)
	assert.InDelta(t, 2, secondary, 1e-6)
}

func TestGatherColors(t *testing.T) {
	red := math.NewVec4(1, 0, 0, 1)
	green := math.NewVec4(0, 1, 0, 1)
	fallback := math.NewVec4(0, 0, 0, 1)

	assert.Equal(t, []math.Vec4{red, red, red}, gatherColors([]math.Vec4{red}, []int{0, 4, 7}, fallback))
	assert.Equal(t, []math.Vec4{green, red, fallback}, gatherColors([]math.Vec4{red, green}, []int{1, 0, 5}, fallback))
	assert.Equal(t, []math.Vec4{fallback, fallback}, gatherColors(nil, []int{0, 1}, fallback))
	assert.Equal(t, []math.Vec4{fallback}, gatherColors([]math.Vec4{red, green}, nil, fallback))
}

func TestInstancedDrawsOnceWithStorageBuffers(t *testing.T) {
	res, ctx := newResources()
	s, err := NewSolidColorInstanced(res)
	require.NoError(t, err)
	defer s.Destroy()

	red := math.NewVec4(1, 0, 0, 1)
	blue := math.NewVec4(0, 0, 1, 1)
	s.Colors = []math.Vec4{red, blue, red}

	mesh := triangle(t, ctx)
	models := []Renderable{
		model{meshes: []*renderer.Mesh{mesh}, world: math.NewMat4Identity()},
		model{meshes: []*renderer.Mesh{mesh}, world: math.NewMat4Translation(math.NewVec3(2, 0, 0))},
		model{meshes: []*renderer.Mesh{mesh}, world: math.NewMat4Translation(math.NewVec3(4, 0, 0))},
	}
	ctx.Reset()
	require.NoError(t, s.DrawModels(models, NewGlobalParameters(components.NewCamera())))

	draws := ctx.Filter(rendertest.OpDrawCall)
	require.Len(t, draws, 1)
	assert.Equal(t, int32(3), draws[0].Args[2])

	var storage []uint32
	for _, bind := range ctx.Filter(rendertest.OpBufferBind) {
		if bind.Args[0] == metadata.BufferTargetStorage {
			storage = append(storage, bind.Args[1].(uint32))
		}
	}
	assert.Equal(t, []uint32{InstanceTransformsBinding, renderer.BufferBindingStart}, storage)

	got, err := s.colors.ReadBack()
	require.NoError(t, err)
	assert.Equal(t, []math.Vec4{red, blue, red}, got)

	transforms, err := s.transforms.ReadBack()
	require.NoError(t, err)
	require.Len(t, transforms, 3)
	assert.Equal(t, models[2].ModelMatrix(), transforms[2].Model)

	ctx.Reset()
	require.NoError(t, s.DrawModels(nil, NewGlobalParameters(components.NewCamera())))
	assert.Equal(t, 0, ctx.Calls())

	err = s.DrawModels([]Renderable{model{world: math.NewMat4Identity()}}, NewGlobalParameters(components.NewCamera()))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestInstancedDrawPlacesOneInstancePerMesh(t *testing.T) {
	res, ctx := newResources()
	s, err := NewSolidColorInstanced(res)
	require.NoError(t, err)
	defer s.Destroy()

	red := math.NewVec4(1, 0, 0, 1)
	s.Colors = []math.Vec4{red, math.NewVec4(0, 0, 1, 1)}
	meshes := []*renderer.Mesh{triangle(t, ctx), triangle(t, ctx)}

	ctx.Reset()
	assert.ErrorIs(t, s.Draw(meshes), core.ErrInvalidArgument)
	assert.ErrorIs(t, s.Draw(meshes, "params"), core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())

	params := NewGlobalParameters(components.NewCamera())
	params.Model = math.NewMat4Translation(math.NewVec3(0, 3, 0))
	require.NoError(t, s.Draw(meshes, params))

	draws := ctx.Filter(rendertest.OpDrawCall)
	require.Len(t, draws, 2)
	for _, draw := range draws {
		assert.Equal(t, int32(1), draw.Args[2])
	}

	transforms, err := s.transforms.ReadBack()
	require.NoError(t, err)
	require.Len(t, transforms, 1)
	assert.Equal(t, params.Model, transforms[0].Model)
	assert.Equal(t, params.Model.Inverse(), transforms[0].WorldToObject)

	colors, err := s.colors.ReadBack()
	require.NoError(t, err)
	assert.Equal(t, []math.Vec4{red}, colors)
}

func TestDirectionalLightArguments(t *testing.T) {
	res, ctx := newResources()
	light, err := NewDirectionalLight(res)
	require.NoError(t, err)
	defer light.Destroy()
	meshes := []*renderer.Mesh{triangle(t, ctx)}
	camera := components.NewCamera()
	identity := math.NewMat4Identity()
	white := math.NewVec3(1, 1, 1)

	cases := map[string][]interface{}{
		"missing":      {identity, camera},
		"model type":   {camera, camera, white},
		"nil camera":   {identity, (*components.Camera)(nil), white},
		"colour vec4":  {identity, camera, math.NewVec4(1, 1, 1, 1)},
		"global shape": {NewGlobalParameters(camera)},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			ctx.Reset()
			assert.ErrorIs(t, light.Draw(meshes, args...), core.ErrInvalidArgument)
			assert.Equal(t, 0, ctx.Calls())
		})
	}

	ctx.Reset()
	require.NoError(t, light.Draw(meshes, identity, camera, white))
	ops := dispatchOps(ctx)
	require.Len(t, ops, 6)
	state := ops[0].Args[0].(metadata.RenderState)
	assert.False(t, state.CullFace)
	assert.Equal(t, metadata.PolygonModeLine, state.Polygon.Mode)
	assert.Equal(t, uint32(0), ops[2].Args[1])
	assert.Equal(t, uint32(1), ops[3].Args[1])
	assert.Equal(t, rendertest.OpDrawCall, ops[4].Op)
}

func TestSkyboxSkipsDrawWithoutSky(t *testing.T) {
	res, ctx := newResources()
	sky, err := NewSkybox(res)
	require.NoError(t, err)
	defer sky.Destroy()
	meshes := []*renderer.Mesh{triangle(t, ctx)}
	params := NewGlobalParameters(components.NewCamera())

	ctx.Reset()
	require.NoError(t, sky.Draw(meshes, params))
	assert.Equal(t, 0, ctx.Count(rendertest.OpDrawCall))
	assert.Equal(t, 0, ctx.Count(rendertest.OpTextureBind))

	sky.Channel0 = renderer.NewTexture(res.Context)
	ctx.Reset()
	require.NoError(t, sky.Draw(meshes, params))
	assert.Equal(t, 1, ctx.Count(rendertest.OpDrawCall))
	binds := ctx.Filter(rendertest.OpTextureBind)
	require.Len(t, binds, 1)
	assert.Equal(t, uint32(0), binds[0].Args[0])
	assert.Equal(t, sky.Channel0.Handle(), binds[0].Args[1])
}

func TestPrefilterCapture(t *testing.T) {
	res, ctx := newResources()
	prefilter, err := NewPrefilter(res)
	require.NoError(t, err)
	defer prefilter.Destroy()
	meshes := []*renderer.Mesh{triangle(t, ctx)}

	ctx.Reset()
	assert.ErrorIs(t, prefilter.Draw(meshes, NewGlobalParameters(components.NewCamera())), core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())

	assert.ErrorIs(t, prefilter.Draw(meshes), core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())

	assert.ErrorIs(t, prefilter.Draw(meshes, math.NewMat4Identity()), core.ErrInvalidArgument)
	assert.ErrorIs(t, prefilter.Draw(meshes, math.NewMat4Identity(), "projection"), core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())

	env := renderer.NewCubeMap(res.Context)
	require.NoError(t, env.Initialize(128, metadata.PixelFormatRGB16F, 5))
	prefilter.Map0 = env
	prefilter.Roughness = 2

	ctx.Reset()
	require.NoError(t, prefilter.Draw(meshes))
	var slots []uint32
	for _, bind := range ctx.Filter(rendertest.OpBufferBind) {
		slots = append(slots, bind.Args[1].(uint32))
	}
	assert.Equal(t, []uint32{TransformsBinding, renderer.UniformBufferBindingStart}, slots)
	assert.Equal(t, 1, ctx.Count(rendertest.OpDrawCall))

	params, err := prefilter.uniform.ReadBack()
	require.NoError(t, err)
	assert.Equal(t, float32(1), params[0].Roughness)
	assert.Equal(t, float32(128), params[0].Resolution)

	view := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	projection := math.NewMat4Perspective(math.DegToRad(90), 1, 0.1, 10)
	require.NoError(t, prefilter.Draw(meshes, view, projection))
	transforms, err := prefilter.transforms.ReadBack()
	require.NoError(t, err)
	assert.Equal(t, view, transforms[0].View)
	assert.Equal(t, projection, transforms[0].Projection)
}

func TestCaptureMaterialsRejectMissingInputsBeforeTheGPU(t *testing.T) {
	res, ctx := newResources()
	equirect, err := NewEquirectangularToCubemap(res)
	require.NoError(t, err)
	defer equirect.Destroy()
	irradiance, err := NewIrradianceConvolution(res)
	require.NoError(t, err)
	defer irradiance.Destroy()
	meshes := []*renderer.Mesh{triangle(t, ctx)}

	ctx.Reset()
	assert.ErrorIs(t, equirect.Draw(meshes), core.ErrInvalidArgument)
	assert.ErrorIs(t, irradiance.Draw(meshes, math.NewMat4Identity(), math.NewMat4Identity()), core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())
}

type recordingEditor struct {
	labels []string
}

func (e *recordingEditor) ColorEdit4(label string, value *math.Vec4) bool {
	e.labels = append(e.labels, label)
	return false
}

func (e *recordingEditor) SliderFloat(label string, value *float32, min, max float32) bool {
	e.labels = append(e.labels, label)
	*value = max
	return true
}

func (e *recordingEditor) DragFloat(label string, value *float32, speed float32) bool {
	e.labels = append(e.labels, label)
	return false
}

func (e *recordingEditor) DragInt(label string, value *int32, speed float32, min, max int32) bool {
	e.labels = append(e.labels, label)
	return false
}

func (e *recordingEditor) Checkbox(label string, value *bool) bool {
	e.labels = append(e.labels, label)
	return false
}

func (e *recordingEditor) Texture(label string, texture *renderer.Texture) {
	e.labels = append(e.labels, label)
}

func TestControllerExposesTunables(t *testing.T) {
	res, _ := newResources()
	grid, err := NewGrid(res)
	require.NoError(t, err)
	defer grid.Destroy()

	editor := &recordingEditor{}
	grid.Controller(editor)
	assert.Equal(t, []string{"Distance"}, editor.labels)
	assert.Equal(t, float32(10), grid.Distance)
}
