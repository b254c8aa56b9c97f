package renderer

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
)

/** @brief Indexed triangle geometry living on the GPU. */
type Mesh struct {
	resource
	Name       string
	IndexCount int32

	vbo uint32
	ebo uint32
}

func NewMesh(ctx Context, name string, vertices []math.Vertex3D, indices []uint32) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %s has no geometry: %w", name, core.ErrInvalidArgument)
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return nil, fmt.Errorf("mesh %s index %d outside %d vertices: %w", name, i, len(vertices), core.ErrInvalidArgument)
		}
	}
	vao, vbo, ebo := ctx.CreateVertexArray(vertices, indices)
	m := &Mesh{Name: name, IndexCount: int32(len(indices)), vbo: vbo, ebo: ebo}
	m.init(ctx, vao, func() { ctx.DeleteVertexArray(vao, vbo, ebo) })
	return m, nil
}

func (m *Mesh) Draw() {
	m.ctx.DrawElements(m.handle, m.IndexCount, 1)
}

func (m *Mesh) DrawInstanced(count int) {
	if count <= 0 {
		return
	}
	m.ctx.DrawElements(m.handle, m.IndexCount, int32(count))
}
