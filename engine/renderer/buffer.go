package renderer

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/** @brief Binding slots 0..3 are reserved for the global parameter blocks. */
const (
	UniformBufferBindingStart uint32 = 4
	BufferBindingStart        uint32 = 4
)

/**
 * @brief A GPU buffer mirroring an array of fixed layout CPU records. T must
 * be a plain struct or scalar whose Go layout equals the shader block layout;
 * records carry explicit padding fields where std140/std430 need them.
 */
type Buffer[T any] struct {
	resource
	length int
	usage  metadata.BufferUsage
}

// NewBuffer allocates storage for length records of T.
func NewBuffer[T any](ctx Context, length int) (*Buffer[T], error) {
	if length <= 0 {
		return nil, fmt.Errorf("buffer length %d: %w", length, core.ErrInvalidArgument)
	}
	handle := ctx.CreateBuffer()
	b := &Buffer[T]{length: length, usage: metadata.BufferUsageDynamic}
	b.init(ctx, handle, func() { ctx.DeleteBuffer(handle) })
	ctx.BufferData(handle, make([]byte, b.Size()), b.usage)
	return b, nil
}

// Len is the number of records the GPU storage holds.
func (b *Buffer[T]) Len() int {
	return b.length
}

// Size is the storage size in bytes.
func (b *Buffer[T]) Size() int {
	var zero T
	return b.length * int(unsafe.Sizeof(zero))
}

/**
 * @brief Uploads values. The storage is reallocated when the number of
 * records changes, otherwise it is updated in place.
 */
func (b *Buffer[T]) SetData(values ...T) error {
	if len(values) == 0 {
		return fmt.Errorf("buffer set data without values: %w", core.ErrInvalidArgument)
	}
	data := recordBytes(values)
	if len(values) != b.length {
		b.length = len(values)
		b.ctx.BufferData(b.handle, data, b.usage)
		return nil
	}
	b.ctx.BufferSubData(b.handle, 0, data)
	return nil
}

// SetAt updates a single record without touching the rest.
func (b *Buffer[T]) SetAt(index int, value T) error {
	if index < 0 || index >= b.length {
		return fmt.Errorf("buffer index %d out of range [0,%d): %w", index, b.length, core.ErrInvalidArgument)
	}
	var zero T
	stride := int(unsafe.Sizeof(zero))
	b.ctx.BufferSubData(b.handle, index*stride, recordBytes([]T{value}))
	return nil
}

// ReadBack copies the GPU storage into fresh records.
func (b *Buffer[T]) ReadBack() ([]T, error) {
	size := b.Size()
	data := b.ctx.GetBufferSubData(b.handle, 0, size)
	if len(data) != size {
		return nil, fmt.Errorf("buffer readback returned %d of %d bytes: %w", len(data), size, core.ErrInvalidArgument)
	}
	out := make([]T, b.length)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), size), data)
	return out, nil
}

func (b *Buffer[T]) BindUniformAt(slot uint32) {
	b.ctx.BindBufferBase(metadata.BufferTargetUniform, slot, b.handle)
}

func (b *Buffer[T]) BindStorageAt(slot uint32) {
	b.ctx.BindBufferBase(metadata.BufferTargetStorage, slot, b.handle)
}

func recordBytes[T any](values []T) []byte {
	var zero T
	size := len(values) * int(unsafe.Sizeof(zero))
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), size))
	return out
}
