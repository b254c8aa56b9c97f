package renderer

import (
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type TextureTarget int

const (
	TextureTarget2D TextureTarget = iota
	TextureTargetCubeMap
)

/**
 * @brief Context is the graphics capability every GPU object is built on.
 * Implementations wrap one API context and must only be called from the
 * thread that owns it. Handles are opaque non-zero integers; zero means
 * "none" (the default framebuffer, no program, ...).
 */
type Context interface {
	// textures
	CreateTexture(target TextureTarget) uint32
	DeleteTexture(texture uint32)
	TextureStorage2D(texture uint32, levels int32, format metadata.PixelFormat, width, height uint32)
	TextureSubImage2D(texture uint32, level int32, x, y int32, width, height uint32, format metadata.PixelFormat, pixels []byte)
	TextureParameters(texture uint32, params metadata.TextureParameters)
	GenerateMipmap(texture uint32)
	GetTextureImage(texture uint32, level int32, format metadata.PixelFormat, width, height uint32) []byte
	CopyToCubeFace(src, dst uint32, face metadata.CubeMapFace, level int32, width, height uint32)
	BindTextureUnit(unit uint32, texture uint32)

	// buffers
	CreateBuffer() uint32
	DeleteBuffer(buffer uint32)
	BufferData(buffer uint32, data []byte, usage metadata.BufferUsage)
	BufferSubData(buffer uint32, offset int, data []byte)
	GetBufferSubData(buffer uint32, offset int, size int) []byte
	BindBufferBase(target metadata.BufferTarget, index uint32, buffer uint32)

	// shaders and programs
	CreateShader(shaderType metadata.ShaderType) uint32
	// CompileShader uploads a SPIR-V module or GLSL source and compiles it.
	CompileShader(shader uint32, blob []byte) (ok bool, log string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	// LinkProgram returns the driver info log, empty on a clean link.
	LinkProgram(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32

	// uniforms, location -1 is ignored by the driver
	Uniform1i(location int32, value int32)
	Uniform1f(location int32, value float32)
	Uniform2f(location int32, value math.Vec2)
	Uniform3f(location int32, value math.Vec3)
	Uniform4f(location int32, value math.Vec4)
	UniformMatrix2f(location int32, value math.Mat2)
	UniformMatrix3f(location int32, value math.Mat3)
	UniformMatrix4f(location int32, value math.Mat4)

	// fixed function state
	ApplyRenderState(state metadata.RenderState)
	Viewport(x, y int32, width, height uint32)
	ClearColor(color math.Vec4)
	Clear(flags metadata.ClearFlags)

	// framebuffers
	CreateFramebuffer() uint32
	DeleteFramebuffer(framebuffer uint32)
	CreateRenderbuffer(samples int32, format metadata.PixelFormat, width, height uint32) uint32
	DeleteRenderbuffer(renderbuffer uint32)
	FramebufferTexture(framebuffer uint32, attachment metadata.Attachment, texture uint32)
	FramebufferRenderbuffer(framebuffer uint32, attachment metadata.Attachment, renderbuffer uint32)
	BindFramebuffer(framebuffer uint32)
	BlitFramebuffer(src, dst uint32, width, height uint32)
	ReadPixels(framebuffer uint32, x, y int32, width, height uint32, format metadata.PixelFormat) []byte

	// geometry
	CreateVertexArray(vertices []math.Vertex3D, indices []uint32) (vao, vbo, ebo uint32)
	DeleteVertexArray(vao, vbo, ebo uint32)
	DrawElements(vao uint32, count int32, instances int32)
}
