package opengl

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type pixelFormat struct {
	internal uint32
	format   uint32
	xtype    uint32
}

// pixelFormats maps engine formats to upload triples. Float formats are
// always transferred as 32 bit floats.
var pixelFormats = map[metadata.PixelFormat]pixelFormat{
	metadata.PixelFormatR8:              {gl.R8, gl.RED, gl.UNSIGNED_BYTE},
	metadata.PixelFormatRG8:             {gl.RG8, gl.RG, gl.UNSIGNED_BYTE},
	metadata.PixelFormatRGB8:            {gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE},
	metadata.PixelFormatRGBA8:           {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	metadata.PixelFormatR16F:            {gl.R16F, gl.RED, gl.FLOAT},
	metadata.PixelFormatRG16F:           {gl.RG16F, gl.RG, gl.FLOAT},
	metadata.PixelFormatRGB16F:          {gl.RGB16F, gl.RGB, gl.FLOAT},
	metadata.PixelFormatRGBA16F:         {gl.RGBA16F, gl.RGBA, gl.FLOAT},
	metadata.PixelFormatR32F:            {gl.R32F, gl.RED, gl.FLOAT},
	metadata.PixelFormatRG32F:           {gl.RG32F, gl.RG, gl.FLOAT},
	metadata.PixelFormatRGB32F:          {gl.RGB32F, gl.RGB, gl.FLOAT},
	metadata.PixelFormatRGBA32F:         {gl.RGBA32F, gl.RGBA, gl.FLOAT},
	metadata.PixelFormatDepth24Stencil8: {gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8},
	metadata.PixelFormatDepth32F:        {gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT},
}

func glPixelFormat(f metadata.PixelFormat) pixelFormat {
	if pf, ok := pixelFormats[f]; ok {
		return pf
	}
	return pixelFormats[metadata.PixelFormatRGBA8]
}

func glShaderType(t metadata.ShaderType) uint32 {
	switch t {
	case metadata.ShaderTypeFragment:
		return gl.FRAGMENT_SHADER
	case metadata.ShaderTypeGeometry:
		return gl.GEOMETRY_SHADER
	case metadata.ShaderTypeCompute:
		return gl.COMPUTE_SHADER
	}
	return gl.VERTEX_SHADER
}

var depthFunctions = [...]uint32{
	metadata.DepthFunctionNever:          gl.NEVER,
	metadata.DepthFunctionLess:           gl.LESS,
	metadata.DepthFunctionEqual:          gl.EQUAL,
	metadata.DepthFunctionLessOrEqual:    gl.LEQUAL,
	metadata.DepthFunctionGreater:        gl.GREATER,
	metadata.DepthFunctionNotEqual:       gl.NOTEQUAL,
	metadata.DepthFunctionGreaterOrEqual: gl.GEQUAL,
	metadata.DepthFunctionAlways:         gl.ALWAYS,
}

var stencilFunctions = [...]uint32{
	metadata.StencilFunctionNever:          gl.NEVER,
	metadata.StencilFunctionLess:           gl.LESS,
	metadata.StencilFunctionEqual:          gl.EQUAL,
	metadata.StencilFunctionLessOrEqual:    gl.LEQUAL,
	metadata.StencilFunctionGreater:        gl.GREATER,
	metadata.StencilFunctionNotEqual:       gl.NOTEQUAL,
	metadata.StencilFunctionGreaterOrEqual: gl.GEQUAL,
	metadata.StencilFunctionAlways:         gl.ALWAYS,
}

var blendFactors = [...]uint32{
	metadata.BlendFactorZero:                  gl.ZERO,
	metadata.BlendFactorOne:                   gl.ONE,
	metadata.BlendFactorSrcColor:              gl.SRC_COLOR,
	metadata.BlendFactorOneMinusSrcColor:      gl.ONE_MINUS_SRC_COLOR,
	metadata.BlendFactorDstColor:              gl.DST_COLOR,
	metadata.BlendFactorOneMinusDstColor:      gl.ONE_MINUS_DST_COLOR,
	metadata.BlendFactorSrcAlpha:              gl.SRC_ALPHA,
	metadata.BlendFactorOneMinusSrcAlpha:      gl.ONE_MINUS_SRC_ALPHA,
	metadata.BlendFactorDstAlpha:              gl.DST_ALPHA,
	metadata.BlendFactorOneMinusDstAlpha:      gl.ONE_MINUS_DST_ALPHA,
	metadata.BlendFactorConstantColor:         gl.CONSTANT_COLOR,
	metadata.BlendFactorOneMinusConstantColor: gl.ONE_MINUS_CONSTANT_COLOR,
	metadata.BlendFactorConstantAlpha:         gl.CONSTANT_ALPHA,
	metadata.BlendFactorOneMinusConstantAlpha: gl.ONE_MINUS_CONSTANT_ALPHA,
	metadata.BlendFactorSrcAlphaSaturate:      gl.SRC_ALPHA_SATURATE,
}

var blendEquations = [...]uint32{
	metadata.BlendEquationAdd:             gl.FUNC_ADD,
	metadata.BlendEquationSubtract:        gl.FUNC_SUBTRACT,
	metadata.BlendEquationReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
	metadata.BlendEquationMin:             gl.MIN,
	metadata.BlendEquationMax:             gl.MAX,
}

var triangleFaces = [...]uint32{
	metadata.TriangleFaceFront:        gl.FRONT,
	metadata.TriangleFaceBack:         gl.BACK,
	metadata.TriangleFaceFrontAndBack: gl.FRONT_AND_BACK,
}

var polygonModes = [...]uint32{
	metadata.PolygonModeFill:  gl.FILL,
	metadata.PolygonModeLine:  gl.LINE,
	metadata.PolygonModePoint: gl.POINT,
}

var textureFilters = [...]int32{
	metadata.TextureFilterNearest:              gl.NEAREST,
	metadata.TextureFilterLinear:               gl.LINEAR,
	metadata.TextureFilterNearestMipmapNearest: gl.NEAREST_MIPMAP_NEAREST,
	metadata.TextureFilterLinearMipmapNearest:  gl.LINEAR_MIPMAP_NEAREST,
	metadata.TextureFilterNearestMipmapLinear:  gl.NEAREST_MIPMAP_LINEAR,
	metadata.TextureFilterLinearMipmapLinear:   gl.LINEAR_MIPMAP_LINEAR,
}

var textureWraps = [...]int32{
	metadata.TextureWrapRepeat:         gl.REPEAT,
	metadata.TextureWrapMirroredRepeat: gl.MIRRORED_REPEAT,
	metadata.TextureWrapClampToEdge:    gl.CLAMP_TO_EDGE,
	metadata.TextureWrapClampToBorder:  gl.CLAMP_TO_BORDER,
}

var bufferUsages = [...]uint32{
	metadata.BufferUsageStatic:  gl.STATIC_DRAW,
	metadata.BufferUsageDynamic: gl.DYNAMIC_DRAW,
	metadata.BufferUsageStream:  gl.STREAM_DRAW,
}

func glAttachment(a metadata.Attachment) uint32 {
	if a == metadata.AttachmentDepthStencil {
		return gl.DEPTH_STENCIL_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0
}

func glBufferTarget(t metadata.BufferTarget) uint32 {
	if t == metadata.BufferTargetStorage {
		return gl.SHADER_STORAGE_BUFFER
	}
	return gl.UNIFORM_BUFFER
}

func glClearMask(flags metadata.ClearFlags) uint32 {
	var mask uint32
	if flags&metadata.ClearColor != 0 {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&metadata.ClearDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if flags&metadata.ClearStencil != 0 {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	return mask
}

func toggle(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
		return
	}
	gl.Disable(capability)
}
