package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

func TestFrameUpdateOnlyOnChange(t *testing.T) {
	ctx := rendertest.NewContext()
	frame := renderer.NewFrame(ctx)
	assert.Contains(t, frame.Name, "Frame ")

	require.NoError(t, frame.Update(320, 240, 4, metadata.PixelFormatRGBA8))
	assert.Equal(t, 2, ctx.Live(rendertest.KindRenderbuffer))
	ctx.Reset()

	require.NoError(t, frame.Update(320, 240, 4, metadata.PixelFormatRGBA8))
	assert.Equal(t, 0, ctx.Calls())

	require.NoError(t, frame.Update(640, 480, 4, metadata.PixelFormatRGBA8))
	assert.Equal(t, 2, ctx.Count(rendertest.OpRenderbufferDelete))
	assert.Equal(t, 2, ctx.Live(rendertest.KindRenderbuffer))
	assert.Equal(t, uint32(640), frame.Texture().Width)

	assert.ErrorIs(t, frame.Update(0, 480, 4, metadata.PixelFormatRGBA8), core.ErrInvalidArgument)
}

func TestFrameBindResolves(t *testing.T) {
	ctx := rendertest.NewContext()
	frame := renderer.NewFrame(ctx)
	require.NoError(t, frame.Update(16, 16, 1, metadata.PixelFormatRGBA8))
	ctx.Reset()

	frame.Bind()
	frame.Unbind()
	assert.Equal(t, []string{
		rendertest.OpFramebufferBind,
		rendertest.OpViewport,
		rendertest.OpClearColor,
		rendertest.OpClear,
		rendertest.OpFramebufferBlit,
		rendertest.OpFramebufferBind,
	}, ctx.Ops())
	binds := ctx.Filter(rendertest.OpFramebufferBind)
	assert.Equal(t, frame.Handle(), binds[0].Args[0])
	assert.Equal(t, uint32(0), binds[1].Args[0])
}

func TestFramePresentBlitsToWindow(t *testing.T) {
	ctx := rendertest.NewContext()
	frame := renderer.NewFrame(ctx)
	frame.Present()
	assert.Equal(t, 0, ctx.Count(rendertest.OpFramebufferBlit))

	require.NoError(t, frame.Update(64, 32, 4, metadata.PixelFormatRGBA8))
	frame.Present()
	blits := ctx.Filter(rendertest.OpFramebufferBlit)
	require.Len(t, blits, 1)
	assert.Equal(t, uint32(0), blits[0].Args[1])
	assert.Equal(t, uint32(64), blits[0].Args[2])
}

func TestFramePixelFlipsY(t *testing.T) {
	ctx := rendertest.NewContext()
	var gotX, gotY int32
	ctx.ReadPixelsFunc = func(_ uint32, x, y int32, _, _ uint32) []byte {
		gotX, gotY = x, y
		return []byte{10, 20, 30, 255}
	}
	frame := renderer.NewFrame(ctx)
	require.NoError(t, frame.Update(100, 50, 4, metadata.PixelFormatRGBA8))

	px, err := frame.Pixel(3, 10)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{10, 20, 30, 255}, px)
	assert.Equal(t, int32(3), gotX)
	assert.Equal(t, int32(39), gotY)

	_, err = frame.Pixel(100, 0)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestFrameDestroyReleasesEverything(t *testing.T) {
	ctx := rendertest.NewContext()
	frame := renderer.NewFrame(ctx)
	require.NoError(t, frame.Update(8, 8, 4, metadata.PixelFormatRGBA8))

	frame.Destroy()
	assert.Equal(t, 0, ctx.Live(rendertest.KindFramebuffer))
	assert.Equal(t, 0, ctx.Live(rendertest.KindRenderbuffer))
	assert.Equal(t, 0, ctx.Live(rendertest.KindTexture))
}
