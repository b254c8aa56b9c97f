package metadata

import (
	"github.com/spaghettifunk/triangle/engine/math"
)

/**
 * @brief Represents the configuration for a geometry: CPU side vertices and
 * indices ready to be uploaded as a mesh.
 */
type GeometryConfig struct {
	/** @brief The Name of the geometry. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices. */
	Indices []uint32
}

/** @brief Vertex attribute locations shared by every shader. */
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribTexcoord uint32 = 2
	AttribColour   uint32 = 3
	AttribTangent  uint32 = 4
)
