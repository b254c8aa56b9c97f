// Package scene hosts the editable world: models, their selection, colour
// id picking and the fly camera viewport.
package scene

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
)

// maxColorID keeps ids below white, the pickup mask colour.
const maxColorID = 0xFFFFFF - 1

// ColorID is the RGBA8 colour a model is drawn with in the id frame.
type ColorID [4]byte

func newColorID(id uint32) ColorID {
	return ColorID{byte(id), byte(id >> 8), byte(id >> 16), 0xFF}
}

// Vec4 is the normalized colour uploaded to shaders.
func (c ColorID) Vec4() math.Vec4 {
	return math.NewVec4(float32(c[0])/255, float32(c[1])/255, float32(c[2])/255, float32(c[3])/255)
}

/**
 * @brief A named set of meshes drawn with one material. Every model owns a
 * unique colour id for the lifetime of its identifier.
 */
type Model struct {
	Name      string
	Transform *math.Transform
	Material  materials.Drawable
	ColorID   ColorID

	meshes []*renderer.Mesh
	id     uint32
	ids    *core.IdentifierPool
}

func NewModel(ids *core.IdentifierPool, name string, meshes []*renderer.Mesh, material materials.Drawable) (*Model, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("model %s has no meshes: %w", name, core.ErrInvalidArgument)
	}
	m := &Model{
		Name:      name,
		Transform: math.TransformCreate(),
		Material:  material,
		meshes:    meshes,
		ids:       ids,
	}
	m.id = ids.Acquire(m)
	if m.id > maxColorID {
		_ = ids.Release(m.id)
		return nil, fmt.Errorf("model %s: colour ids exhausted: %w", name, core.ErrInvalidArgument)
	}
	m.ColorID = newColorID(m.id)
	return m, nil
}

func (m *Model) Meshes() []*renderer.Mesh {
	return m.meshes
}

func (m *Model) ModelMatrix() math.Mat4 {
	return m.Transform.GetWorld()
}

// Render draws the model with its material and its own transform.
func (m *Model) Render(params materials.GlobalParameters) error {
	if m.Material == nil {
		return fmt.Errorf("model %s has no material: %w", m.Name, core.ErrInvalidArgument)
	}
	params.Model = m.ModelMatrix()
	return m.Material.Draw(m.meshes, params)
}

// Release returns the colour id to the pool. Meshes and material are shared
// and stay alive.
func (m *Model) Release() {
	if m.id == 0 {
		return
	}
	if err := m.ids.Release(m.id); err != nil {
		core.LogWarn("model %s: %s", m.Name, err)
	}
	m.id = 0
}
