package metadata

/** @brief Which targets a clear touches. */
type ClearFlags uint32

const (
	ClearColor   ClearFlags = 0x1
	ClearDepth   ClearFlags = 0x2
	ClearStencil ClearFlags = 0x4
	ClearAll     ClearFlags = ClearColor | ClearDepth | ClearStencil
)

/** @brief Binding point kind for indexed buffer bindings. */
type BufferTarget int

const (
	BufferTargetUniform BufferTarget = iota
	BufferTargetStorage
)

/** @brief Expected update frequency of a buffer's contents. */
type BufferUsage int

const (
	BufferUsageStatic BufferUsage = iota
	BufferUsageDynamic
	BufferUsageStream
)

/** @brief Framebuffer attachment slot. */
type Attachment int

const (
	AttachmentColor0 Attachment = iota
	AttachmentDepthStencil
)
