package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/**
 * @brief An off-screen render target. Drawing goes to a multisampled
 * framebuffer that Unbind resolves into a sampleable texture.
 */
type Frame struct {
	resource
	Name        string
	Width       uint32
	Height      uint32
	Samples     int32
	PixelFormat metadata.PixelFormat
	ClearColor  math.Vec4

	color   uint32
	depth   uint32
	resolve uint32
	texture *Texture
}

func NewFrame(ctx Context) *Frame {
	f := &Frame{
		Name:       fmt.Sprintf("Frame %s", uuid.New()),
		ClearColor: math.NewVec4(0, 0, 0, 0),
		texture:    NewTexture(ctx),
	}
	f.texture.SetWrap(metadata.TextureWrapClampToEdge)
	msaa := ctx.CreateFramebuffer()
	f.resolve = ctx.CreateFramebuffer()
	f.init(ctx, msaa, func() {
		f.releaseAttachments()
		ctx.DeleteFramebuffer(f.resolve)
		ctx.DeleteFramebuffer(msaa)
		f.texture.Destroy()
	})
	return f
}

func (f *Frame) releaseAttachments() {
	if f.color != 0 {
		f.ctx.DeleteRenderbuffer(f.color)
		f.color = 0
	}
	if f.depth != 0 {
		f.ctx.DeleteRenderbuffer(f.depth)
		f.depth = 0
	}
}

// Update resizes the frame. Nothing is reallocated when nothing changed.
func (f *Frame) Update(width, height uint32, samples int32, format metadata.PixelFormat) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("frame %s: size %dx%d: %w", f.Name, width, height, core.ErrInvalidArgument)
	}
	if samples < 1 {
		samples = 1
	}
	if f.Width == width && f.Height == height && f.Samples == samples && f.PixelFormat == format {
		return nil
	}
	f.releaseAttachments()
	f.Width, f.Height, f.Samples, f.PixelFormat = width, height, samples, format

	f.color = f.ctx.CreateRenderbuffer(samples, format, width, height)
	f.depth = f.ctx.CreateRenderbuffer(samples, metadata.PixelFormatDepth24Stencil8, width, height)
	f.ctx.FramebufferRenderbuffer(f.handle, metadata.AttachmentColor0, f.color)
	f.ctx.FramebufferRenderbuffer(f.handle, metadata.AttachmentDepthStencil, f.depth)

	f.texture.Clear(width, height, format)
	f.ctx.FramebufferTexture(f.resolve, metadata.AttachmentColor0, f.texture.Handle())
	core.LogDebug("%s resized to %dx%d (%d samples, %s)", f.Name, width, height, samples, format)
	return nil
}

// Bind redirects drawing into the frame and clears it.
func (f *Frame) Bind() {
	f.ctx.BindFramebuffer(f.handle)
	f.ctx.Viewport(0, 0, f.Width, f.Height)
	f.ctx.ClearColor(f.ClearColor)
	f.ctx.Clear(metadata.ClearAll)
}

// Unbind resolves the samples into the texture and restores the default framebuffer.
func (f *Frame) Unbind() {
	f.ctx.BlitFramebuffer(f.handle, f.resolve, f.Width, f.Height)
	f.ctx.BindFramebuffer(0)
}

// Present copies the resolved image into the default framebuffer.
func (f *Frame) Present() {
	if f.Width == 0 {
		return
	}
	f.ctx.BlitFramebuffer(f.resolve, 0, f.Width, f.Height)
}

func (f *Frame) Texture() *Texture {
	return f.texture
}

/**
 * @brief Reads one resolved RGBA8 pixel. x and y are in window space with the
 * origin at the top left corner.
 */
func (f *Frame) Pixel(x, y int32) ([4]byte, error) {
	var out [4]byte
	if x < 0 || y < 0 || uint32(x) >= f.Width || uint32(y) >= f.Height {
		return out, fmt.Errorf("frame %s: pixel %d,%d outside %dx%d: %w", f.Name, x, y, f.Width, f.Height, core.ErrInvalidArgument)
	}
	data := f.ctx.ReadPixels(f.resolve, x, int32(f.Height)-1-y, 1, 1, metadata.PixelFormatRGBA8)
	if len(data) < 4 {
		return out, fmt.Errorf("frame %s: short pixel read: %w", f.Name, core.ErrInvalidArgument)
	}
	copy(out[:], data)
	return out, nil
}
