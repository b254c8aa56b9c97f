package pbr

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

type fixture struct {
	ctx    *rendertest.Context
	res    materials.Resources
	cube   *renderer.Mesh
	canvas *renderer.Mesh
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	shaders := fstest.MapFS{}
	for _, name := range []string{"pbr/equirectangular_to_cubemap", "pbr/irradiance_convolution", "pbr/prefilter", "pbr/brdf", "skybox/skybox"} {
		shaders[name+".vert"] = &fstest.MapFile{Data: []byte("#version 460\nvoid main() {}\n")}
		shaders[name+".frag"] = &fstest.MapFile{Data: []byte("#version 460\nvoid main() {}\n")}
	}
	ctx := rendertest.NewContext()
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(-1, -1, 0)},
		{Position: math.NewVec3(1, -1, 0)},
		{Position: math.NewVec3(1, 1, 0)},
	}
	cube, err := renderer.NewMesh(ctx, "cube", vertices, []uint32{0, 1, 2})
	require.NoError(t, err)
	canvas, err := renderer.NewMesh(ctx, "canvas", vertices, []uint32{0, 1, 2})
	require.NoError(t, err)
	return &fixture{
		ctx:    ctx,
		res:    materials.Resources{Context: ctx, Shaders: shaders},
		cube:   cube,
		canvas: canvas,
	}
}

func (f *fixture) sky(t *testing.T) *materials.Skybox {
	t.Helper()
	sky, err := materials.NewSkybox(f.res)
	require.NoError(t, err)
	tex := renderer.NewTexture(f.ctx)
	require.NoError(t, tex.Write(metadata.Image{
		Width:       2,
		Height:      1,
		PixelFormat: metadata.PixelFormatRGBA8,
		Pixels:      make([]byte, 8),
	}))
	sky.Channel0 = tex
	return sky
}

func TestNewBakerNeedsMeshes(t *testing.T) {
	f := newFixture(t)
	_, err := NewBaker(f.res, nil, f.canvas)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestBakeWithoutSky(t *testing.T) {
	f := newFixture(t)
	b, err := NewBaker(f.res, f.cube, f.canvas)
	require.NoError(t, err)
	defer b.Destroy()

	assert.ErrorIs(t, b.Bake(nil), core.ErrInvalidArgument)

	sky, err := materials.NewSkybox(f.res)
	require.NoError(t, err)
	defer sky.Destroy()
	assert.ErrorIs(t, b.Bake(sky), core.ErrInvalidArgument)

	assert.ErrorIs(t, b.GenerateIrradianceMap(IrradianceSize), core.ErrInvalidArgument)
	assert.ErrorIs(t, b.GeneratePrefilteredMap(PrefilterSize), core.ErrInvalidArgument)
}

func TestBakeRendersEveryFace(t *testing.T) {
	f := newFixture(t)
	b, err := NewBaker(f.res, f.cube, f.canvas)
	require.NoError(t, err)
	sky := f.sky(t)

	f.ctx.Reset()
	require.NoError(t, b.Bake(sky))

	copies := map[uint32][]rendertest.Command{}
	for _, cmd := range f.ctx.Filter(rendertest.OpTextureCopyFace) {
		dst := cmd.Args[1].(uint32)
		copies[dst] = append(copies[dst], cmd)
	}
	require.Len(t, copies[b.Environment.Handle()], 6)
	require.Len(t, copies[b.Irradiance.Handle()], 6)
	require.Len(t, copies[b.Prefiltered.Handle()], 6*(MaxMipLevels+1))

	for i, cmd := range copies[b.Environment.Handle()] {
		assert.Equal(t, FaceViews[i].Face, cmd.Args[2])
		assert.Equal(t, uint32(EnvironmentSize), cmd.Args[4])
	}
	for i, cmd := range copies[b.Prefiltered.Handle()] {
		level := int32(i / 6)
		assert.Equal(t, level, cmd.Args[3])
		assert.Equal(t, uint32(PrefilterSize)>>uint32(level), cmd.Args[4])
	}

	assert.Equal(t, 6+6+6*(MaxMipLevels+1)+1, f.ctx.Count(rendertest.OpDrawCall))

	mipmaps := 0
	for _, cmd := range f.ctx.Filter(rendertest.OpTextureMipmap) {
		if cmd.Args[0] == b.Environment.Handle() {
			mipmaps++
		}
	}
	assert.Equal(t, 1, mipmaps)

	assert.Equal(t, uint32(BRDFSize), b.BRDF().Width)
	assert.Equal(t, metadata.PixelFormatRG16F, b.BRDF().PixelFormat)
	assert.Equal(t, int32(MaxMipLevels+1), b.Prefiltered.Levels)

	// rebaking reuses the maps
	env := b.Environment.Handle()
	require.NoError(t, b.Bake(sky))
	assert.Equal(t, env, b.Environment.Handle())

	sky.Channel0.Destroy()
	sky.Destroy()
	b.Destroy()
	f.cube.Destroy()
	f.canvas.Destroy()
	for _, kind := range []string{
		rendertest.KindTexture, rendertest.KindBuffer, rendertest.KindProgram,
		rendertest.KindFramebuffer, rendertest.KindRenderbuffer, rendertest.KindVertexArray,
	} {
		assert.Equal(t, 0, f.ctx.Live(kind), kind)
	}
}

func TestPrefilterSizeTooSmall(t *testing.T) {
	f := newFixture(t)
	b, err := NewBaker(f.res, f.cube, f.canvas)
	require.NoError(t, err)
	defer b.Destroy()
	sky := f.sky(t)
	defer sky.Destroy()

	require.NoError(t, b.GenerateCubeMap(sky.Channel0, 64))
	assert.ErrorIs(t, b.GeneratePrefilteredMap(8), core.ErrInvalidArgument)
}

func TestPrefilterRoughness(t *testing.T) {
	assert.Equal(t, float32(0), PrefilterRoughness(0))
	assert.Equal(t, float32(0.5), PrefilterRoughness(MaxMipLevels/2))
	assert.Equal(t, float32(1), PrefilterRoughness(MaxMipLevels))
}
