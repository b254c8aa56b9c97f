// Package rendertest provides a recording graphics context for tests.
package rendertest

import (
	"sync"

	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

// Op names of the recorded commands.
const (
	OpStateApply        = "state-apply"
	OpProgramActivate   = "program-activate"
	OpProgramDeactivate = "program-deactivate"
	OpUniformUpload     = "uniform-upload"
	OpDrawCall          = "draw-call"

	OpTextureCreate     = "texture-create"
	OpTextureDelete     = "texture-delete"
	OpTextureStorage    = "texture-storage"
	OpTextureUpload     = "texture-upload"
	OpTextureParameters = "texture-parameters"
	OpTextureMipmap     = "texture-mipmap"
	OpTextureCopyFace   = "texture-copy-face"
	OpTextureBind       = "texture-bind"

	OpBufferCreate  = "buffer-create"
	OpBufferDelete  = "buffer-delete"
	OpBufferData    = "buffer-data"
	OpBufferSubData = "buffer-subdata"
	OpBufferBind    = "buffer-bind"

	OpShaderCreate  = "shader-create"
	OpShaderCompile = "shader-compile"
	OpShaderDelete  = "shader-delete"
	OpProgramCreate = "program-create"
	OpProgramAttach = "program-attach"
	OpProgramDetach = "program-detach"
	OpProgramLink   = "program-link"
	OpProgramDelete = "program-delete"

	OpViewport   = "viewport"
	OpClearColor = "clear-color"
	OpClear      = "clear"

	OpFramebufferCreate       = "framebuffer-create"
	OpFramebufferDelete       = "framebuffer-delete"
	OpRenderbufferCreate      = "renderbuffer-create"
	OpRenderbufferDelete      = "renderbuffer-delete"
	OpFramebufferTexture      = "framebuffer-texture"
	OpFramebufferRenderbuffer = "framebuffer-renderbuffer"
	OpFramebufferBind         = "framebuffer-bind"
	OpFramebufferBlit         = "framebuffer-blit"

	OpVertexArrayCreate = "vertex-array-create"
	OpVertexArrayDelete = "vertex-array-delete"
)

// Resource kinds tracked by Live.
const (
	KindTexture      = "texture"
	KindBuffer       = "buffer"
	KindShader       = "shader"
	KindProgram      = "program"
	KindFramebuffer  = "framebuffer"
	KindRenderbuffer = "renderbuffer"
	KindVertexArray  = "vertex-array"
)

// Command is one mutating call made on the context.
type Command struct {
	Op   string
	Args []interface{}
}

type texture struct {
	target renderer.TextureTarget
	width  uint32
	height uint32
	format metadata.PixelFormat
	pixels []byte
}

/**
 * @brief Context records every mutating call in order. Queries (uniform
 * locations, readbacks) are counted separately so a test can assert both the
 * exact command stream and that nothing at all reached the GPU.
 */
type Context struct {
	// LinkLog is returned by every LinkProgram call.
	LinkLog string
	// CompileLog, when set, decides per blob whether compilation fails.
	CompileLog func(blob []byte) string
	// ReadPixelsFunc serves ReadPixels; zero bytes are returned without it.
	ReadPixelsFunc func(framebuffer uint32, x, y int32, width, height uint32) []byte
	// InactiveUniforms resolve to location -1.
	InactiveUniforms map[string]bool

	mu        sync.Mutex
	commands  []Command
	queries   int
	next      uint32
	live      map[string]map[uint32]bool
	buffers   map[uint32][]byte
	textures  map[uint32]*texture
	locations map[string]int32
	names     map[int32]string
}

func NewContext() *Context {
	return &Context{
		live:      make(map[string]map[uint32]bool),
		buffers:   make(map[uint32][]byte),
		textures:  make(map[uint32]*texture),
		locations: make(map[string]int32),
		names:     make(map[int32]string),
	}
}

var _ renderer.Context = (*Context)(nil)

func (c *Context) record(op string, args ...interface{}) {
	c.commands = append(c.commands, Command{Op: op, Args: args})
}

func (c *Context) create(kind string) uint32 {
	c.next++
	if c.live[kind] == nil {
		c.live[kind] = make(map[uint32]bool)
	}
	c.live[kind][c.next] = true
	return c.next
}

func (c *Context) release(kind string, handle uint32) {
	delete(c.live[kind], handle)
}

// Reset forgets recorded commands and queries; live resources are kept.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = nil
	c.queries = 0
}

func (c *Context) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Command, len(c.commands))
	copy(out, c.commands)
	return out
}

func (c *Context) Ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.commands))
	for i, cmd := range c.commands {
		out[i] = cmd.Op
	}
	return out
}

// Filter returns the recorded commands with the given op.
func (c *Context) Filter(op string) []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Command
	for _, cmd := range c.commands {
		if cmd.Op == op {
			out = append(out, cmd)
		}
	}
	return out
}

func (c *Context) Count(op string) int {
	return len(c.Filter(op))
}

func (c *Context) Queries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

// Calls is every interaction with the context, mutating or not.
func (c *Context) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.commands) + c.queries
}

// Live counts handles of a kind that were created and not deleted.
func (c *Context) Live(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live[kind])
}

func (c *Context) IsLive(kind string, handle uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live[kind][handle]
}

// BufferBytes returns the current contents of a buffer.
func (c *Context) BufferBytes(handle uint32) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buffers[handle]...)
}

func (c *Context) CreateTexture(target renderer.TextureTarget) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindTexture)
	c.textures[h] = &texture{target: target}
	c.record(OpTextureCreate, h, target)
	return h
}

func (c *Context) DeleteTexture(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindTexture, handle)
	delete(c.textures, handle)
	c.record(OpTextureDelete, handle)
}

func (c *Context) TextureStorage2D(handle uint32, levels int32, format metadata.PixelFormat, width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.textures[handle]; ok {
		t.width, t.height, t.format = width, height, format
		faces := 1
		if t.target == renderer.TextureTargetCubeMap {
			faces = 6
		}
		t.pixels = make([]byte, int(width)*int(height)*format.Size()*faces)
	}
	c.record(OpTextureStorage, handle, levels, format, width, height)
}

func (c *Context) TextureSubImage2D(handle uint32, level int32, x, y int32, width, height uint32, format metadata.PixelFormat, pixels []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.textures[handle]; ok && level == 0 && t.pixels != nil {
		size := format.Size()
		for row := 0; row < int(height); row++ {
			dst := ((int(y)+row)*int(t.width) + int(x)) * size
			src := row * int(width) * size
			if dst+int(width)*size <= len(t.pixels) && src+int(width)*size <= len(pixels) {
				copy(t.pixels[dst:dst+int(width)*size], pixels[src:src+int(width)*size])
			}
		}
	}
	c.record(OpTextureUpload, handle, level, x, y, width, height, format)
}

func (c *Context) TextureParameters(handle uint32, params metadata.TextureParameters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpTextureParameters, handle, params)
}

func (c *Context) GenerateMipmap(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpTextureMipmap, handle)
}

func (c *Context) GetTextureImage(handle uint32, level int32, format metadata.PixelFormat, width, height uint32) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	t, ok := c.textures[handle]
	if !ok || level != 0 {
		return make([]byte, int(width)*int(height)*format.Size())
	}
	return append([]byte(nil), t.pixels...)
}

func (c *Context) CopyToCubeFace(src, dst uint32, face metadata.CubeMapFace, level int32, width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpTextureCopyFace, src, dst, face, level, width, height)
}

func (c *Context) BindTextureUnit(unit uint32, handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpTextureBind, unit, handle)
}

func (c *Context) CreateBuffer() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindBuffer)
	c.record(OpBufferCreate, h)
	return h
}

func (c *Context) DeleteBuffer(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindBuffer, handle)
	delete(c.buffers, handle)
	c.record(OpBufferDelete, handle)
}

func (c *Context) BufferData(handle uint32, data []byte, usage metadata.BufferUsage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers[handle] = append([]byte(nil), data...)
	c.record(OpBufferData, handle, len(data), usage)
}

func (c *Context) BufferSubData(handle uint32, offset int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := c.buffers[handle]
	if offset+len(data) <= len(buf) {
		copy(buf[offset:], data)
	}
	c.record(OpBufferSubData, handle, offset, len(data))
}

func (c *Context) GetBufferSubData(handle uint32, offset int, size int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	buf := c.buffers[handle]
	if offset+size > len(buf) {
		return nil
	}
	return append([]byte(nil), buf[offset:offset+size]...)
}

func (c *Context) BindBufferBase(target metadata.BufferTarget, index uint32, handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpBufferBind, target, index, handle)
}

func (c *Context) CreateShader(shaderType metadata.ShaderType) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindShader)
	c.record(OpShaderCreate, h, shaderType)
	return h
}

func (c *Context) CompileShader(handle uint32, blob []byte) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpShaderCompile, handle, len(blob))
	if c.CompileLog != nil {
		if log := c.CompileLog(blob); log != "" {
			return false, log
		}
	}
	return true, ""
}

func (c *Context) DeleteShader(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindShader, handle)
	c.record(OpShaderDelete, handle)
}

func (c *Context) CreateProgram() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindProgram)
	c.record(OpProgramCreate, h)
	return h
}

func (c *Context) AttachShader(program, shader uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpProgramAttach, program, shader)
}

func (c *Context) DetachShader(program, shader uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpProgramDetach, program, shader)
}

func (c *Context) LinkProgram(program uint32) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpProgramLink, program)
	return c.LinkLog
}

func (c *Context) DeleteProgram(program uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindProgram, program)
	c.record(OpProgramDelete, program)
}

func (c *Context) UseProgram(program uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if program == 0 {
		c.record(OpProgramDeactivate)
		return
	}
	c.record(OpProgramActivate, program)
}

func (c *Context) UniformLocation(program uint32, name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	if c.InactiveUniforms[name] {
		return -1
	}
	loc, ok := c.locations[name]
	if !ok {
		loc = int32(len(c.locations))
		c.locations[name] = loc
		c.names[loc] = name
	}
	return loc
}

// uniform records an upload by uniform name; location -1 is dropped like a driver would.
func (c *Context) uniform(location int32, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if location < 0 {
		return
	}
	c.record(OpUniformUpload, c.names[location], value)
}

func (c *Context) Uniform1i(location int32, value int32)           { c.uniform(location, value) }
func (c *Context) Uniform1f(location int32, value float32)         { c.uniform(location, value) }
func (c *Context) Uniform2f(location int32, value math.Vec2)       { c.uniform(location, value) }
func (c *Context) Uniform3f(location int32, value math.Vec3)       { c.uniform(location, value) }
func (c *Context) Uniform4f(location int32, value math.Vec4)       { c.uniform(location, value) }
func (c *Context) UniformMatrix2f(location int32, value math.Mat2) { c.uniform(location, value) }
func (c *Context) UniformMatrix3f(location int32, value math.Mat3) { c.uniform(location, value) }
func (c *Context) UniformMatrix4f(location int32, value math.Mat4) { c.uniform(location, value) }

func (c *Context) ApplyRenderState(state metadata.RenderState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpStateApply, state)
}

func (c *Context) Viewport(x, y int32, width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpViewport, x, y, width, height)
}

func (c *Context) ClearColor(color math.Vec4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpClearColor, color)
}

func (c *Context) Clear(flags metadata.ClearFlags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpClear, flags)
}

func (c *Context) CreateFramebuffer() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindFramebuffer)
	c.record(OpFramebufferCreate, h)
	return h
}

func (c *Context) DeleteFramebuffer(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindFramebuffer, handle)
	c.record(OpFramebufferDelete, handle)
}

func (c *Context) CreateRenderbuffer(samples int32, format metadata.PixelFormat, width, height uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.create(KindRenderbuffer)
	c.record(OpRenderbufferCreate, h, samples, format, width, height)
	return h
}

func (c *Context) DeleteRenderbuffer(handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindRenderbuffer, handle)
	c.record(OpRenderbufferDelete, handle)
}

func (c *Context) FramebufferTexture(framebuffer uint32, attachment metadata.Attachment, handle uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpFramebufferTexture, framebuffer, attachment, handle)
}

func (c *Context) FramebufferRenderbuffer(framebuffer uint32, attachment metadata.Attachment, renderbuffer uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpFramebufferRenderbuffer, framebuffer, attachment, renderbuffer)
}

func (c *Context) BindFramebuffer(framebuffer uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpFramebufferBind, framebuffer)
}

func (c *Context) BlitFramebuffer(src, dst uint32, width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpFramebufferBlit, src, dst, width, height)
}

func (c *Context) ReadPixels(framebuffer uint32, x, y int32, width, height uint32, format metadata.PixelFormat) []byte {
	c.mu.Lock()
	fn := c.ReadPixelsFunc
	c.queries++
	c.mu.Unlock()
	if fn != nil {
		return fn(framebuffer, x, y, width, height)
	}
	return make([]byte, int(width)*int(height)*format.Size())
}

func (c *Context) CreateVertexArray(vertices []math.Vertex3D, indices []uint32) (uint32, uint32, uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vao := c.create(KindVertexArray)
	vbo := c.create(KindBuffer)
	ebo := c.create(KindBuffer)
	c.record(OpVertexArrayCreate, vao, len(vertices), len(indices))
	return vao, vbo, ebo
}

func (c *Context) DeleteVertexArray(vao, vbo, ebo uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(KindVertexArray, vao)
	c.release(KindBuffer, vbo)
	c.release(KindBuffer, ebo)
	c.record(OpVertexArrayDelete, vao)
}

func (c *Context) DrawElements(vao uint32, count int32, instances int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(OpDrawCall, vao, count, instances)
}
