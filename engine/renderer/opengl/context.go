// Package opengl implements the graphics context on OpenGL 4.6 core using
// direct state access.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type Context struct {
	Vendor   string
	Renderer string
	Version  string
}

var _ renderer.Context = (*Context)(nil)

/**
 * @brief Loads the GL entry points for the context current on this thread.
 * Must be called after the window made its context current.
 */
func NewContext(debug bool) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	c := &Context{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}
	core.LogInfo("OpenGL %s on %s (%s)", c.Version, c.Renderer, c.Vendor)

	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
		gl.DebugMessageCallback(debugCallback, nil)
	}
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.Enable(gl.MULTISAMPLE)
	return c, nil
}

func debugCallback(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		core.LogError("GL[%d]: %s", id, message)
	case gl.DEBUG_SEVERITY_MEDIUM, gl.DEBUG_SEVERITY_LOW:
		core.LogWarn("GL[%d]: %s", id, message)
	default:
		core.LogDebug("GL[%d]: %s", id, message)
	}
}

func (c *Context) CreateTexture(target renderer.TextureTarget) uint32 {
	var handle uint32
	glTarget := uint32(gl.TEXTURE_2D)
	if target == renderer.TextureTargetCubeMap {
		glTarget = gl.TEXTURE_CUBE_MAP
	}
	gl.CreateTextures(glTarget, 1, &handle)
	return handle
}

func (c *Context) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (c *Context) TextureStorage2D(texture uint32, levels int32, format metadata.PixelFormat, width, height uint32) {
	gl.TextureStorage2D(texture, levels, glPixelFormat(format).internal, int32(width), int32(height))
}

func (c *Context) TextureSubImage2D(texture uint32, level int32, x, y int32, width, height uint32, format metadata.PixelFormat, pixels []byte) {
	if len(pixels) == 0 {
		return
	}
	pf := glPixelFormat(format)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TextureSubImage2D(texture, level, x, y, int32(width), int32(height), pf.format, pf.xtype, gl.Ptr(&pixels[0]))
}

func (c *Context) TextureParameters(texture uint32, params metadata.TextureParameters) {
	gl.TextureParameteri(texture, gl.TEXTURE_MIN_FILTER, textureFilters[params.MinFilter])
	gl.TextureParameteri(texture, gl.TEXTURE_MAG_FILTER, textureFilters[params.MagFilter])
	gl.TextureParameteri(texture, gl.TEXTURE_WRAP_S, textureWraps[params.Wrap])
	gl.TextureParameteri(texture, gl.TEXTURE_WRAP_T, textureWraps[params.Wrap])
	gl.TextureParameteri(texture, gl.TEXTURE_WRAP_R, textureWraps[params.Wrap])
	gl.TextureParameterf(texture, gl.TEXTURE_MAX_ANISOTROPY, float32(params.Anisotropy))
}

func (c *Context) GenerateMipmap(texture uint32) {
	gl.GenerateTextureMipmap(texture)
}

func (c *Context) GetTextureImage(texture uint32, level int32, format metadata.PixelFormat, width, height uint32) []byte {
	size := int(width) * int(height) * format.Size()
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	pf := glPixelFormat(format)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTextureImage(texture, level, pf.format, pf.xtype, int32(size), gl.Ptr(&out[0]))
	return out
}

func (c *Context) CopyToCubeFace(src, dst uint32, face metadata.CubeMapFace, level int32, width, height uint32) {
	gl.CopyImageSubData(
		src, gl.TEXTURE_2D, 0, 0, 0, 0,
		dst, gl.TEXTURE_CUBE_MAP, level, 0, 0, int32(face),
		int32(width), int32(height), 1)
}

func (c *Context) BindTextureUnit(unit uint32, texture uint32) {
	gl.BindTextureUnit(unit, texture)
}

func (c *Context) CreateBuffer() uint32 {
	var handle uint32
	gl.CreateBuffers(1, &handle)
	return handle
}

func (c *Context) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (c *Context) BufferData(buffer uint32, data []byte, usage metadata.BufferUsage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(&data[0])
	}
	gl.NamedBufferData(buffer, len(data), ptr, bufferUsages[usage])
}

func (c *Context) BufferSubData(buffer uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.NamedBufferSubData(buffer, offset, len(data), gl.Ptr(&data[0]))
}

func (c *Context) GetBufferSubData(buffer uint32, offset int, size int) []byte {
	if size <= 0 {
		return nil
	}
	out := make([]byte, size)
	gl.GetNamedBufferSubData(buffer, offset, size, gl.Ptr(&out[0]))
	return out
}

func (c *Context) BindBufferBase(target metadata.BufferTarget, index uint32, buffer uint32) {
	gl.BindBufferBase(glBufferTarget(target), index, buffer)
}

func (c *Context) CreateShader(shaderType metadata.ShaderType) uint32 {
	return gl.CreateShader(glShaderType(shaderType))
}

/**
 * @brief SPIR-V modules are loaded with ShaderBinary and specialized at
 * "main"; anything else is compiled as GLSL source.
 */
func (c *Context) CompileShader(shader uint32, blob []byte) (bool, string) {
	if metadata.IsSPIRV(blob) {
		gl.ShaderBinary(1, &shader, gl.SHADER_BINARY_FORMAT_SPIR_V, gl.Ptr(&blob[0]), int32(len(blob)))
		gl.SpecializeShader(shader, gl.Str("main\x00"), 0, nil, nil)
	} else {
		source, free := gl.Strs(string(blob) + "\x00")
		gl.ShaderSource(shader, 1, source, nil)
		free()
		gl.CompileShader(shader)
	}

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (c *Context) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (c *Context) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (c *Context) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (c *Context) LinkProgram(program uint32) string {
	gl.LinkProgram(program)

	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 1 {
		var status int32
		gl.GetProgramiv(program, gl.LINK_STATUS, &status)
		if status == gl.FALSE {
			return "link failed without a log"
		}
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimSpace(strings.TrimRight(log, "\x00"))
}

func (c *Context) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (c *Context) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (c *Context) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) Uniform1i(location int32, value int32) {
	gl.Uniform1i(location, value)
}

func (c *Context) Uniform1f(location int32, value float32) {
	gl.Uniform1f(location, value)
}

func (c *Context) Uniform2f(location int32, value math.Vec2) {
	gl.Uniform2f(location, value.X, value.Y)
}

func (c *Context) Uniform3f(location int32, value math.Vec3) {
	gl.Uniform3f(location, value.X, value.Y, value.Z)
}

func (c *Context) Uniform4f(location int32, value math.Vec4) {
	gl.Uniform4f(location, value.X, value.Y, value.Z, value.W)
}

func (c *Context) UniformMatrix2f(location int32, value math.Mat2) {
	gl.UniformMatrix2fv(location, 1, false, &value.Data[0])
}

func (c *Context) UniformMatrix3f(location int32, value math.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &value.Data[0])
}

func (c *Context) UniformMatrix4f(location int32, value math.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &value.Data[0])
}

func (c *Context) ApplyRenderState(state metadata.RenderState) {
	toggle(gl.DEPTH_TEST, state.DepthTest)
	gl.DepthMask(state.DepthWrite)
	gl.DepthFunc(depthFunctions[state.DepthFunction])

	toggle(gl.STENCIL_TEST, state.StencilTest)
	if state.StencilWrite {
		gl.StencilMask(state.StencilMask)
	} else {
		gl.StencilMask(0x00)
	}
	gl.StencilFunc(stencilFunctions[state.StencilFunction], state.StencilReference, state.StencilMask)
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.REPLACE)

	toggle(gl.CULL_FACE, state.CullFace)
	gl.CullFace(gl.BACK)
	if state.FrontFace == metadata.FrontFaceClockwise {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}

	toggle(gl.BLEND, state.Blend)
	gl.BlendFunc(blendFactors[state.SourceFactor], blendFactors[state.DestinationFactor])
	gl.BlendEquation(blendEquations[state.BlendEquation])

	gl.ColorMask(state.ColorWrite, state.ColorWrite, state.ColorWrite, state.ColorWrite)
	gl.PolygonMode(triangleFaces[state.Polygon.Face], polygonModes[state.Polygon.Mode])
}

func (c *Context) Viewport(x, y int32, width, height uint32) {
	gl.Viewport(x, y, int32(width), int32(height))
}

func (c *Context) ClearColor(color math.Vec4) {
	gl.ClearColor(color.X, color.Y, color.Z, color.W)
}

func (c *Context) Clear(flags metadata.ClearFlags) {
	// clears respect the write masks of the last bound pipeline
	gl.DepthMask(true)
	gl.StencilMask(0xFF)
	gl.ColorMask(true, true, true, true)
	gl.Clear(glClearMask(flags))
}

func (c *Context) CreateFramebuffer() uint32 {
	var handle uint32
	gl.CreateFramebuffers(1, &handle)
	return handle
}

func (c *Context) DeleteFramebuffer(framebuffer uint32) {
	gl.DeleteFramebuffers(1, &framebuffer)
}

func (c *Context) CreateRenderbuffer(samples int32, format metadata.PixelFormat, width, height uint32) uint32 {
	var handle uint32
	gl.CreateRenderbuffers(1, &handle)
	gl.NamedRenderbufferStorageMultisample(handle, samples, glPixelFormat(format).internal, int32(width), int32(height))
	return handle
}

func (c *Context) DeleteRenderbuffer(renderbuffer uint32) {
	gl.DeleteRenderbuffers(1, &renderbuffer)
}

func (c *Context) FramebufferTexture(framebuffer uint32, attachment metadata.Attachment, texture uint32) {
	gl.NamedFramebufferTexture(framebuffer, glAttachment(attachment), texture, 0)
}

func (c *Context) FramebufferRenderbuffer(framebuffer uint32, attachment metadata.Attachment, renderbuffer uint32) {
	gl.NamedFramebufferRenderbuffer(framebuffer, glAttachment(attachment), gl.RENDERBUFFER, renderbuffer)
	if status := gl.CheckNamedFramebufferStatus(framebuffer, gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE && attachment == metadata.AttachmentDepthStencil {
		core.LogWarn("framebuffer %d incomplete: 0x%x", framebuffer, status)
	}
}

func (c *Context) BindFramebuffer(framebuffer uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
}

func (c *Context) BlitFramebuffer(src, dst uint32, width, height uint32) {
	w, h := int32(width), int32(height)
	gl.BlitNamedFramebuffer(src, dst, 0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
}

func (c *Context) ReadPixels(framebuffer uint32, x, y int32, width, height uint32, format metadata.PixelFormat) []byte {
	size := int(width) * int(height) * format.Size()
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	pf := glPixelFormat(format)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, int32(width), int32(height), pf.format, pf.xtype, gl.Ptr(&out[0]))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return out
}

var vertexStride = int32(unsafe.Sizeof(math.Vertex3D{}))

/**
 * @brief Uploads interleaved vertices and indices into immutable buffers and
 * describes the attribute layout at the shared attribute locations.
 */
func (c *Context) CreateVertexArray(vertices []math.Vertex3D, indices []uint32) (uint32, uint32, uint32) {
	var vao, vbo, ebo uint32
	gl.CreateVertexArrays(1, &vao)
	gl.CreateBuffers(1, &vbo)
	gl.CreateBuffers(1, &ebo)

	gl.NamedBufferStorage(vbo, len(vertices)*int(vertexStride), gl.Ptr(&vertices[0]), 0)
	gl.NamedBufferStorage(ebo, len(indices)*4, gl.Ptr(&indices[0]), 0)
	gl.VertexArrayVertexBuffer(vao, 0, vbo, 0, vertexStride)
	gl.VertexArrayElementBuffer(vao, ebo)

	var v math.Vertex3D
	attributes := []struct {
		location uint32
		size     int32
		offset   uintptr
	}{
		{metadata.AttribPosition, 3, unsafe.Offsetof(v.Position)},
		{metadata.AttribNormal, 3, unsafe.Offsetof(v.Normal)},
		{metadata.AttribTexcoord, 2, unsafe.Offsetof(v.Texcoord)},
		{metadata.AttribColour, 4, unsafe.Offsetof(v.Colour)},
		{metadata.AttribTangent, 3, unsafe.Offsetof(v.Tangent)},
	}
	for _, a := range attributes {
		gl.EnableVertexArrayAttrib(vao, a.location)
		gl.VertexArrayAttribFormat(vao, a.location, a.size, gl.FLOAT, false, uint32(a.offset))
		gl.VertexArrayAttribBinding(vao, a.location, 0)
	}
	return vao, vbo, ebo
}

func (c *Context) DeleteVertexArray(vao, vbo, ebo uint32) {
	gl.DeleteVertexArrays(1, &vao)
	buffers := [2]uint32{vbo, ebo}
	gl.DeleteBuffers(2, &buffers[0])
}

func (c *Context) DrawElements(vao uint32, count int32, instances int32) {
	gl.BindVertexArray(vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil, instances)
	gl.BindVertexArray(0)
}
