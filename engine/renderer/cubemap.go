package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

// CubeMap is a six face texture filled by copying rendered faces into it.
type CubeMap struct {
	resource
	Name        string
	Size        uint32
	PixelFormat metadata.PixelFormat
	Levels      int32

	params metadata.TextureParameters
	dirty  bool
}

func NewCubeMap(ctx Context) *CubeMap {
	params := metadata.DefaultTextureParameters()
	params.Wrap = metadata.TextureWrapClampToEdge
	c := &CubeMap{
		Name:   fmt.Sprintf("CubeMap %s", uuid.New()),
		params: params,
		dirty:  true,
	}
	c.allocate(ctx)
	return c
}

func (c *CubeMap) allocate(ctx Context) {
	handle := ctx.CreateTexture(TextureTargetCubeMap)
	c.init(ctx, handle, func() { ctx.DeleteTexture(handle) })
}

// Initialize allocates storage for size x size faces with the given mip count.
func (c *CubeMap) Initialize(size uint32, format metadata.PixelFormat, levels int32) error {
	if size == 0 || levels < 1 {
		return fmt.Errorf("cube map %s: size %d levels %d: %w", c.Name, size, levels, core.ErrInvalidArgument)
	}
	if c.Size == size && c.PixelFormat == format && c.Levels == levels {
		return nil
	}
	if c.Size != 0 {
		ctx := c.ctx
		c.Destroy()
		c.allocate(ctx)
	}
	c.Size, c.PixelFormat, c.Levels = size, format, levels
	c.ctx.TextureStorage2D(c.handle, levels, format, size, size)
	c.ctx.TextureParameters(c.handle, c.params)
	c.dirty = false
	return nil
}

// WriteFace copies a rendered 2D texture into one face at the given mip level.
func (c *CubeMap) WriteFace(src *Texture, face metadata.CubeMapFace, level int32) error {
	if level < 0 || level >= c.Levels {
		return fmt.Errorf("cube map %s: level %d of %d: %w", c.Name, level, c.Levels, core.ErrInvalidArgument)
	}
	size := c.Size >> uint32(level)
	if src.Width != size || src.Height != size {
		return fmt.Errorf("cube map %s: face %dx%d, want %dx%d: %w", c.Name, src.Width, src.Height, size, size, core.ErrInvalidArgument)
	}
	c.ctx.CopyToCubeFace(src.Handle(), c.handle, face, level, size, size)
	return nil
}

func (c *CubeMap) GenerateMipmap() {
	c.ctx.GenerateMipmap(c.handle)
}

func (c *CubeMap) SetMinFilter(filter metadata.TextureFilter) {
	c.params.MinFilter = filter
	c.dirty = true
}

func (c *CubeMap) SetMagFilter(filter metadata.TextureFilter) {
	c.params.MagFilter = filter
	c.dirty = true
}

func (c *CubeMap) SetWrap(wrap metadata.TextureWrap) {
	c.params.Wrap = wrap
	c.dirty = true
}

func (c *CubeMap) UpdateParameters() {
	if !c.dirty || c.Size == 0 {
		return
	}
	c.ctx.TextureParameters(c.handle, c.params)
	c.dirty = false
}
