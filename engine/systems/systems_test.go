package systems

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/config"
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

func TestJobSystemValidatesConfig(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)

	var completed, failed atomic.Int32
	var sum atomic.Int64
	for i := 0; i < 20; i++ {
		require.NoError(t, js.Submit(metadata.JobTask{
			InputParams: i,
			OnStart: func(p interface{}) (interface{}, error) {
				n := p.(int)
				if n%5 == 0 {
					return nil, fmt.Errorf("job %d refused", n)
				}
				return n * 2, nil
			},
			OnComplete: func(result interface{}) {
				completed.Add(1)
				sum.Add(int64(result.(int)))
			},
			OnFailure: func(err error) {
				failed.Add(1)
			},
		}))
	}
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(16), completed.Load())
	assert.Equal(t, int32(4), failed.Load())
	// 2 * (0+...+19 - (0+5+10+15))
	assert.Equal(t, int64(2*(190-30)), sum.Load())
}

func TestJobSystemShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)

	err = js.Submit(metadata.JobTask{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	err = js.Submit(metadata.JobTask{OnStart: func(interface{}) (interface{}, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrJobSystemStopped)
}

// assertOutwardWinding checks that every non-degenerate triangle winds
// counter-clockwise around the stored vertex normal.
func assertOutwardWinding(t *testing.T, config *metadata.GeometryConfig) {
	t.Helper()
	for i := 0; i+2 < len(config.Indices); i += 3 {
		v0 := config.Vertices[config.Indices[i]]
		v1 := config.Vertices[config.Indices[i+1]]
		v2 := config.Vertices[config.Indices[i+2]]
		face := v1.Position.Sub(v0.Position).Cross(v2.Position.Sub(v0.Position))
		if face.Length() < 1e-6 {
			continue
		}
		normal := v0.Normal.Add(v1.Normal).Add(v2.Normal)
		require.Greater(t, face.Dot(normal), float32(0), "%s triangle %d winds inward", config.Name, i/3)
	}
}

func TestGenerateCubeConfig(t *testing.T) {
	config := GenerateCubeConfig(2, 4, 6, 1, 1, "box")
	assert.Equal(t, "box", config.Name)
	require.Len(t, config.Vertices, 24)
	require.Len(t, config.Indices, 36)

	for _, v := range config.Vertices {
		assert.Equal(t, float32(1), math.Max(v.Position.X, -v.Position.X))
		assert.Equal(t, float32(2), math.Max(v.Position.Y, -v.Position.Y))
		assert.Equal(t, float32(3), math.Max(v.Position.Z, -v.Position.Z))
		assert.InDelta(t, 1, v.Tangent.Length(), 1e-5)
	}
	assertOutwardWinding(t, config)

	// zero sizes fall back to one
	unit := GenerateCubeConfig(0, 0, 0, 0, 0, "unit")
	assert.Equal(t, float32(0.5), unit.Vertices[0].Position.Z)
}

func TestGeneratePlaneConfig(t *testing.T) {
	config := GeneratePlaneConfig(10, 10, 2, 3, 5, 5, "floor")
	require.Len(t, config.Vertices, 2*3*4)
	require.Len(t, config.Indices, 2*3*6)
	for _, v := range config.Vertices {
		assert.Equal(t, math.NewVec3Up(), v.Normal)
		assert.Equal(t, float32(0), v.Position.Y)
		assert.LessOrEqual(t, v.Texcoord.X, float32(5))
	}
	assertOutwardWinding(t, config)
}

func TestGenerateSphereConfig(t *testing.T) {
	config := GenerateSphereConfig(2, 8, "ball")
	require.Len(t, config.Vertices, 9*17)
	require.Len(t, config.Indices, (8-1)*16*6)
	for _, v := range config.Vertices {
		assert.InDelta(t, 2, v.Position.Length(), 1e-4)
		assert.InDelta(t, 1, v.Normal.Length(), 1e-4)
	}
	for _, i := range config.Indices {
		assert.Less(t, int(i), len(config.Vertices))
	}
	assertOutwardWinding(t, config)

	small := GenerateSphereConfig(1, 1, "tiny")
	assert.Len(t, small.Vertices, 4*7)
}

func TestGenerateCanvasConfig(t *testing.T) {
	config := GenerateCanvasConfig("canvas")
	require.Len(t, config.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 3, 1}, config.Indices)
	assert.Equal(t, math.NewVec3(-1, -1, 0), config.Vertices[0].Position)
	assert.Equal(t, math.NewVec2(1, 1), config.Vertices[1].Texcoord)
	assertOutwardWinding(t, config)
}

func TestGeometrySystemCachesMeshes(t *testing.T) {
	ctx := rendertest.NewContext()
	_, err := NewGeometrySystem(&GeometrySystemConfig{}, ctx)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 3}, ctx)
	require.NoError(t, err)

	cube, err := gs.Cube(1)
	require.NoError(t, err)
	again, err := gs.Cube(1)
	require.NoError(t, err)
	assert.Same(t, cube, again)
	assert.Equal(t, int32(36), cube.IndexCount)
	assert.Equal(t, 1, ctx.Count(rendertest.OpVertexArrayCreate))

	_, err = gs.Sphere(16)
	require.NoError(t, err)
	canvas, err := gs.Canvas()
	require.NoError(t, err)
	assert.Equal(t, CanvasGeometryName, canvas.Name)
	assert.Equal(t, 3, gs.Count())

	_, err = gs.Plane(20)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	gs.Release(canvas.Name)
	assert.True(t, canvas.IsDestroyed())
	plane, err := gs.Plane(20)
	require.NoError(t, err)
	assert.Equal(t, "plane_20", plane.Name)

	require.NoError(t, gs.Shutdown())
	assert.Equal(t, 0, gs.Count())
	assert.Equal(t, 0, ctx.Live(rendertest.KindVertexArray))
	assert.Equal(t, 0, ctx.Live(rendertest.KindBuffer))
}

type fakeSource struct {
	mu     sync.Mutex
	images map[string]metadata.Image
	calls  int
}

func (f *fakeSource) LoadImage(name string, params metadata.ImageParams) (metadata.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	img, ok := f.images[name]
	if !ok {
		return metadata.Image{}, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return img, nil
}

func (f *fakeSource) set(name string, img metadata.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[name] = img
}

func solid(width, height uint32, value byte) metadata.Image {
	pixels := make([]byte, width*height*4)
	for i := range pixels {
		pixels[i] = value
	}
	return metadata.Image{Width: width, Height: height, PixelFormat: metadata.PixelFormatRGBA8, Pixels: pixels}
}

type textureFixture struct {
	ctx     *rendertest.Context
	source  *fakeSource
	jobs    *JobSystem
	uploads *renderer.WorkQueue
	bus     *core.EventBus
	ts      *TextureSystem
	loaded  *loadedNames
}

type loadedNames struct {
	mu    sync.Mutex
	names []string
}

func (l *loadedNames) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

func newTextureFixture(t *testing.T, max uint32) *textureFixture {
	t.Helper()
	f := &textureFixture{
		ctx:    rendertest.NewContext(),
		source: &fakeSource{images: map[string]metadata.Image{"textures/bricks.png": solid(8, 4, 7)}},
		bus:    core.NewEventBus(),
		loaded: &loadedNames{},
	}
	var err error
	f.jobs, err = NewJobSystem(1, 4)
	require.NoError(t, err)
	f.uploads, err = renderer.NewWorkQueue(8)
	require.NoError(t, err)

	f.bus.Register(core.EVENT_CODE_TEXTURE_LOADED, f.loaded, func(ctx core.EventContext) bool {
		f.loaded.mu.Lock()
		defer f.loaded.mu.Unlock()
		f.loaded.names = append(f.loaded.names, ctx.Data.(string))
		return false
	})

	f.ts, err = NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: max,
		Parameters:      metadata.DefaultTextureParameters(),
	}, f.ctx, f.source, f.jobs, f.uploads, f.bus)
	require.NoError(t, err)
	t.Cleanup(func() {
		f.ts.Shutdown()
		f.jobs.Shutdown()
	})
	return f
}

func (f *textureFixture) drainAfter(t *testing.T, pending int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.uploads.Len() == pending }, 2*time.Second, time.Millisecond)
	assert.Equal(t, pending, f.uploads.Drain(f.ctx))
}

func (f *textureFixture) uploadsTo(handle uint32) int {
	n := 0
	for _, c := range f.ctx.Filter(rendertest.OpTextureUpload) {
		if c.Args[0] == handle {
			n++
		}
	}
	return n
}

func TestTextureSystemValidatesConfig(t *testing.T) {
	ctx := rendertest.NewContext()
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()
	q, err := renderer.NewWorkQueue(1)
	require.NoError(t, err)

	_, err = NewTextureSystem(&TextureSystemConfig{}, ctx, &fakeSource{}, js, q, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1}, ctx, nil, js, q, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestTextureSystemDefaultTexture(t *testing.T) {
	f := newTextureFixture(t, 4)

	def := f.ts.DefaultTexture
	assert.Equal(t, uint32(8), def.Width)
	assert.Equal(t, metadata.PixelFormatRGBA8, def.PixelFormat)

	pattern := checkerboard(defaultTextureSize).Pixels
	assert.Equal(t, []byte{255, 255, 255, 255}, pattern[0:4])
	assert.Equal(t, []byte{255, 0, 255, 255}, pattern[2*4:3*4])
	assert.Equal(t, []byte{255, 255, 255, 255}, pattern[(2*8+2)*4:(2*8+3)*4])

	got, err := f.ts.Acquire(DefaultTextureName)
	require.NoError(t, err)
	assert.Same(t, def, got)
	assert.Equal(t, 0, f.ts.Count())
}

func TestTextureSystemLoadsAsynchronously(t *testing.T) {
	f := newTextureFixture(t, 4)

	tex, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	assert.Equal(t, "textures/bricks.png", tex.Name)
	assert.Equal(t, uint32(defaultTextureSize), tex.Width, "the pattern shows until the upload queue drains")
	assert.Equal(t, uint32(defaultTextureSize), tex.Height)
	assert.Equal(t, checkerboard(defaultTextureSize).Pixels, tex.Pixels())

	f.drainAfter(t, 1)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.Equal(t, solid(8, 4, 7).Pixels, tex.Pixels())
	assert.Equal(t, []string{"textures/bricks.png"}, f.loaded.list())
}

func TestTextureSystemReferenceCounts(t *testing.T) {
	f := newTextureFixture(t, 4)

	a, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	b, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, f.ctx.Count(rendertest.OpTextureCreate)-1, "one texture besides the default")

	f.ts.Release("textures/bricks.png")
	assert.False(t, a.IsDestroyed())
	assert.True(t, f.ts.IsLoaded("textures/bricks.png"))

	f.ts.Release("textures/bricks.png")
	assert.True(t, a.IsDestroyed())
	assert.False(t, f.ts.IsLoaded("textures/bricks.png"))

	// the upload of a released texture is dropped
	f.ctx.Reset()
	f.drainAfter(t, 1)
	assert.Equal(t, 0, f.ctx.Count(rendertest.OpTextureUpload))
	assert.Empty(t, f.loaded.list())

	f.ts.Release("textures/bricks.png")
}

func TestTextureSystemMissingImageUsesPattern(t *testing.T) {
	f := newTextureFixture(t, 4)

	tex, err := f.ts.Acquire("textures/missing.png")
	require.NoError(t, err)
	f.drainAfter(t, 1)

	assert.Equal(t, uint32(defaultTextureSize), tex.Width)
	assert.Equal(t, checkerboard(defaultTextureSize).Pixels, tex.Pixels())
}

func TestTextureSystemCapacity(t *testing.T) {
	f := newTextureFixture(t, 1)

	_, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	_, err = f.ts.Acquire("textures/other.png")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	err = f.ts.Reload("textures/other.png")
	assert.ErrorIs(t, err, core.ErrTextureNotFound)
}

func TestTextureSystemReloadSupersedesOlderLoads(t *testing.T) {
	f := newTextureFixture(t, 4)

	tex, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	f.source.set("textures/bricks.png", solid(2, 2, 99))
	require.NoError(t, f.ts.Reload("textures/bricks.png"))

	f.drainAfter(t, 2)
	assert.Equal(t, 1, f.uploadsTo(tex.Handle()))
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, solid(2, 2, 99).Pixels, tex.Pixels())
}

func TestTextureSystemHotReload(t *testing.T) {
	f := newTextureFixture(t, 4)

	tex, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	f.drainAfter(t, 1)

	f.source.set("textures/bricks.png", solid(4, 4, 1))
	f.bus.Fire(core.EventContext{Type: core.EVENT_CODE_ASSET_CHANGED, Data: "textures/bricks.png"})
	f.bus.Fire(core.EventContext{Type: core.EVENT_CODE_ASSET_CHANGED, Data: "textures/unrelated.png"})
	f.drainAfter(t, 1)

	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, []string{"textures/bricks.png", "textures/bricks.png"}, f.loaded.list())
	f.source.mu.Lock()
	assert.Equal(t, 2, f.source.calls)
	f.source.mu.Unlock()
}

func TestTextureSystemShutdown(t *testing.T) {
	f := newTextureFixture(t, 4)

	_, err := f.ts.Acquire("textures/bricks.png")
	require.NoError(t, err)
	_, err = f.ts.Acquire("textures/missing.png")
	require.NoError(t, err)

	require.NoError(t, f.ts.Shutdown())
	assert.Equal(t, 0, f.ts.Count())
	require.NoError(t, f.jobs.Shutdown())
	f.uploads.Drain(f.ctx)
	assert.Equal(t, 0, f.ctx.Live(rendertest.KindTexture))
}

func TestSystemManager(t *testing.T) {
	ctx := rendertest.NewContext()
	uploads, err := renderer.NewWorkQueue(4)
	require.NoError(t, err)
	source := &fakeSource{images: map[string]metadata.Image{"textures/bricks.png": solid(2, 2, 3)}}

	cfg := config.Default()
	cfg.Jobs.Workers = 0
	_, err = NewSystemManager(cfg, ctx, source, uploads, nil)
	assert.True(t, errors.Is(err, ErrNoWorkers))

	sm, err := NewSystemManager(config.Default(), ctx, source, uploads, core.NewEventBus())
	require.NoError(t, err)

	tex, err := sm.Textures().Acquire("textures/bricks.png")
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureFilterLinearMipmapLinear, tex.Parameters().MinFilter)
	_, err = sm.Geometry().Cube(1)
	require.NoError(t, err)
	assert.NotNil(t, sm.Jobs())

	require.NoError(t, sm.Shutdown())
	uploads.Drain(ctx)
	assert.Equal(t, 0, ctx.Live(rendertest.KindTexture))
	assert.Equal(t, 0, ctx.Live(rendertest.KindVertexArray))
}
