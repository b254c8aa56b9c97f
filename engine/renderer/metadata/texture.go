package metadata

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
)

/** @brief Internal storage format of a texture or render target. */
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatR8
	PixelFormatRG8
	PixelFormatRGB8
	PixelFormatRGBA8
	PixelFormatR16F
	PixelFormatRG16F
	PixelFormatRGB16F
	PixelFormatRGBA16F
	PixelFormatR32F
	PixelFormatRG32F
	PixelFormatRGB32F
	PixelFormatRGBA32F
	PixelFormatDepth24Stencil8
	PixelFormatDepth32F
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatR8:              "R8",
	PixelFormatRG8:             "RG8",
	PixelFormatRGB8:            "RGB8",
	PixelFormatRGBA8:           "RGBA8",
	PixelFormatR16F:            "R16F",
	PixelFormatRG16F:           "RG16F",
	PixelFormatRGB16F:          "RGB16F",
	PixelFormatRGBA16F:         "RGBA16F",
	PixelFormatR32F:            "R32F",
	PixelFormatRG32F:           "RG32F",
	PixelFormatRGB32F:          "RGB32F",
	PixelFormatRGBA32F:         "RGBA32F",
	PixelFormatDepth24Stencil8: "Depth24Stencil8",
	PixelFormatDepth32F:        "Depth32F",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Channels returns the number of colour channels.
func (f PixelFormat) Channels() int {
	switch f {
	case PixelFormatR8, PixelFormatR16F, PixelFormatR32F, PixelFormatDepth32F:
		return 1
	case PixelFormatRG8, PixelFormatRG16F, PixelFormatRG32F, PixelFormatDepth24Stencil8:
		return 2
	case PixelFormatRGB8, PixelFormatRGB16F, PixelFormatRGB32F:
		return 3
	case PixelFormatRGBA8, PixelFormatRGBA16F, PixelFormatRGBA32F:
		return 4
	}
	return 0
}

// Size returns the number of bytes of one pixel as read back from the GPU.
// Half float formats read back as 32 bit floats.
func (f PixelFormat) Size() int {
	switch f {
	case PixelFormatR8, PixelFormatRG8, PixelFormatRGB8, PixelFormatRGBA8:
		return f.Channels()
	case PixelFormatR16F, PixelFormatRG16F, PixelFormatRGB16F, PixelFormatRGBA16F,
		PixelFormatR32F, PixelFormatRG32F, PixelFormatRGB32F, PixelFormatRGBA32F:
		return f.Channels() * 4
	case PixelFormatDepth24Stencil8, PixelFormatDepth32F:
		return 4
	}
	return 0
}

// IsFloat reports whether the pixels are stored as floats on the CPU side.
func (f PixelFormat) IsFloat() bool {
	return f >= PixelFormatR16F && f <= PixelFormatRGBA32F
}

// PixelFormatFor picks the colour format matching the channel count of a
// decoded image.
func PixelFormatFor(channels int, hdr bool) (PixelFormat, error) {
	formats := [2][4]PixelFormat{
		{PixelFormatR8, PixelFormatRG8, PixelFormatRGB8, PixelFormatRGBA8},
		{PixelFormatR16F, PixelFormatRG16F, PixelFormatRGB16F, PixelFormatRGBA16F},
	}
	if channels < 1 || channels > 4 {
		return PixelFormatUnknown, fmt.Errorf("%d channels: %w", channels, core.ErrUnknownPixelFormat)
	}
	row := 0
	if hdr {
		row = 1
	}
	return formats[row][channels-1], nil
}

/** @brief Texture sampling filter. */
type TextureFilter int

const (
	TextureFilterNearest TextureFilter = iota
	TextureFilterLinear
	TextureFilterNearestMipmapNearest
	TextureFilterLinearMipmapNearest
	TextureFilterNearestMipmapLinear
	TextureFilterLinearMipmapLinear
)

/** @brief Texture addressing mode outside [0, 1]. */
type TextureWrap int

const (
	TextureWrapRepeat TextureWrap = iota
	TextureWrapMirroredRepeat
	TextureWrapClampToEdge
	TextureWrapClampToBorder
)

/**
 * @brief Sampling parameters of a texture. They are applied in one batch
 * through TextureParameters on the context.
 */
type TextureParameters struct {
	Anisotropy     int32
	MinFilter      TextureFilter
	MagFilter      TextureFilter
	Wrap           TextureWrap
	GenerateMipmap bool
}

// DefaultTextureParameters mirrors what a freshly created texture uses.
func DefaultTextureParameters() TextureParameters {
	return TextureParameters{
		Anisotropy: 16,
		MinFilter:  TextureFilterLinear,
		MagFilter:  TextureFilterLinear,
		Wrap:       TextureWrapRepeat,
	}
}

/** @brief Faces of a cube map in the order GPUs expect them. */
type CubeMapFace int

const (
	CubeMapFacePositiveX CubeMapFace = iota
	CubeMapFaceNegativeX
	CubeMapFacePositiveY
	CubeMapFaceNegativeY
	CubeMapFacePositiveZ
	CubeMapFaceNegativeZ
)

// CubeMapFaces lists every face in upload order.
var CubeMapFaces = [6]CubeMapFace{
	CubeMapFacePositiveX,
	CubeMapFaceNegativeX,
	CubeMapFacePositiveY,
	CubeMapFaceNegativeY,
	CubeMapFacePositiveZ,
	CubeMapFaceNegativeZ,
}
