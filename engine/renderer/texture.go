package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/**
 * @brief A 2D texture with immutable storage. Sampling parameters are staged
 * by the setters and applied in one batch by UpdateParameters; Write always
 * applies them after an upload.
 */
type Texture struct {
	resource
	Name        string
	Width       uint32
	Height      uint32
	PixelFormat metadata.PixelFormat
	Levels      int32

	params metadata.TextureParameters
	dirty  bool
}

func NewTexture(ctx Context) *Texture {
	t := &Texture{
		Name:   fmt.Sprintf("Texture %s", uuid.New()),
		params: metadata.DefaultTextureParameters(),
		dirty:  true,
	}
	t.allocate(ctx)
	return t
}

func (t *Texture) allocate(ctx Context) {
	handle := ctx.CreateTexture(TextureTarget2D)
	t.init(ctx, handle, func() { ctx.DeleteTexture(handle) })
}

// MipLevels is the full chain length for a width x height image.
func MipLevels(width, height uint32) int32 {
	size := width
	if height > size {
		size = height
	}
	if size == 0 {
		return 1
	}
	return int32(math.Floor(math.Log2(float32(size)))) + 1
}

// storage (re)creates immutable storage when the shape changes.
func (t *Texture) storage(width, height uint32, format metadata.PixelFormat, levels int32) {
	if t.Width == width && t.Height == height && t.PixelFormat == format && t.Levels == levels {
		return
	}
	if t.Width != 0 || t.Height != 0 {
		ctx := t.ctx
		t.Destroy()
		t.allocate(ctx)
	}
	t.Width, t.Height, t.PixelFormat, t.Levels = width, height, format, levels
	t.ctx.TextureStorage2D(t.handle, levels, format, width, height)
}

/**
 * @brief Uploads a decoded image, reallocating storage when the image shape
 * differs from the current one.
 */
func (t *Texture) Write(img metadata.Image) error {
	if img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("texture %s: empty image: %w", t.Name, core.ErrInvalidArgument)
	}
	if img.PixelFormat.Size() == 0 {
		return fmt.Errorf("texture %s: format %s: %w", t.Name, img.PixelFormat, core.ErrUnknownPixelFormat)
	}
	expected := int(img.Width) * int(img.Height) * img.PixelFormat.Size()
	if len(img.Pixels) != expected {
		return fmt.Errorf("texture %s: got %d bytes, want %d: %w", t.Name, len(img.Pixels), expected, core.ErrInvalidArgument)
	}
	levels := int32(1)
	if t.params.GenerateMipmap {
		levels = MipLevels(img.Width, img.Height)
	}
	t.storage(img.Width, img.Height, img.PixelFormat, levels)
	t.ctx.TextureSubImage2D(t.handle, 0, 0, 0, img.Width, img.Height, img.PixelFormat, img.Pixels)
	t.applyParameters()
	core.LogDebug("uploaded %s (%dx%d %s)", t.Name, img.Width, img.Height, img.PixelFormat)
	return nil
}

// SubWrite replaces a region of level 0.
func (t *Texture) SubWrite(x, y int32, width, height uint32, pixels []byte) error {
	if x < 0 || y < 0 || uint32(x)+width > t.Width || uint32(y)+height > t.Height {
		return fmt.Errorf("texture %s: region %d,%d %dx%d outside %dx%d: %w", t.Name, x, y, width, height, t.Width, t.Height, core.ErrInvalidArgument)
	}
	if len(pixels) != int(width)*int(height)*t.PixelFormat.Size() {
		return fmt.Errorf("texture %s: region size mismatch: %w", t.Name, core.ErrInvalidArgument)
	}
	t.ctx.TextureSubImage2D(t.handle, 0, x, y, width, height, t.PixelFormat, pixels)
	if t.params.GenerateMipmap {
		t.ctx.GenerateMipmap(t.handle)
	}
	return nil
}

// Clear allocates empty storage, used for render targets.
func (t *Texture) Clear(width, height uint32, format metadata.PixelFormat) {
	levels := int32(1)
	if t.params.GenerateMipmap {
		levels = MipLevels(width, height)
	}
	t.storage(width, height, format, levels)
	t.applyParameters()
}

// Pixels reads back level 0.
func (t *Texture) Pixels() []byte {
	return t.ctx.GetTextureImage(t.handle, 0, t.PixelFormat, t.Width, t.Height)
}

func (t *Texture) Parameters() metadata.TextureParameters {
	return t.params
}

func (t *Texture) IsDirty() bool {
	return t.dirty
}

func (t *Texture) SetAnisotropy(value int32) {
	t.params.Anisotropy = math.Clamp(value, 1, 16)
	t.dirty = true
}

func (t *Texture) SetMinFilter(filter metadata.TextureFilter) {
	t.params.MinFilter = filter
	t.dirty = true
}

func (t *Texture) SetMagFilter(filter metadata.TextureFilter) {
	t.params.MagFilter = filter
	t.dirty = true
}

func (t *Texture) SetWrap(wrap metadata.TextureWrap) {
	t.params.Wrap = wrap
	t.dirty = true
}

// SetGenerateMipmap takes effect on the next Write or Clear.
func (t *Texture) SetGenerateMipmap(enable bool) {
	t.params.GenerateMipmap = enable
	t.dirty = true
}

func (t *Texture) SetParameters(params metadata.TextureParameters) {
	t.params = params
	t.dirty = true
}

// UpdateParameters pushes staged sampling parameters, if any, to the GPU.
func (t *Texture) UpdateParameters() {
	if !t.dirty || t.Width == 0 {
		return
	}
	t.applyParameters()
}

func (t *Texture) applyParameters() {
	t.ctx.TextureParameters(t.handle, t.params)
	if t.params.GenerateMipmap && t.Levels > 1 {
		t.ctx.GenerateMipmap(t.handle)
	}
	t.dirty = false
}
