package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

const (
	CubeGeometryName   = "cube"
	SphereGeometryName = "sphere"
	PlaneGeometryName  = "plane"
	CanvasGeometryName = "canvas"
)

type GeometrySystemConfig struct {
	/** @brief The maximum number of meshes that can be cached at once. */
	MaxGeometryCount uint32
}

/**
 * @brief Generates primitive geometry and keeps the uploaded meshes cached by
 * name so materials and scenes share one copy.
 */
type GeometrySystem struct {
	Config *GeometrySystemConfig

	ctx    renderer.Context
	mu     sync.Mutex
	meshes map[string]*renderer.Mesh
}

func NewGeometrySystem(config *GeometrySystemConfig, ctx renderer.Context) (*GeometrySystem, error) {
	if config == nil || config.MaxGeometryCount == 0 {
		return nil, fmt.Errorf("geometry system: MaxGeometryCount must be > 0: %w", core.ErrInvalidArgument)
	}
	if ctx == nil {
		return nil, fmt.Errorf("geometry system: nil context: %w", core.ErrInvalidArgument)
	}
	return &GeometrySystem{
		Config: config,
		ctx:    ctx,
		meshes: make(map[string]*renderer.Mesh),
	}, nil
}

/**
 * @brief Uploads the geometry described by config, or returns the mesh
 * already cached under the same name.
 */
func (gs *GeometrySystem) Acquire(config *metadata.GeometryConfig) (*renderer.Mesh, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if m, ok := gs.meshes[config.Name]; ok {
		return m, nil
	}
	if uint32(len(gs.meshes)) >= gs.Config.MaxGeometryCount {
		return nil, fmt.Errorf("geometry system full (%d meshes), cannot load %s: %w", gs.Config.MaxGeometryCount, config.Name, core.ErrInvalidArgument)
	}
	m, err := renderer.NewMesh(gs.ctx, config.Name, config.Vertices, config.Indices)
	if err != nil {
		return nil, err
	}
	gs.meshes[config.Name] = m
	core.LogDebug("geometry %s uploaded (%d vertices, %d indices)", config.Name, len(config.Vertices), len(config.Indices))
	return m, nil
}

// Cube returns an axis aligned cube with the given edge length.
func (gs *GeometrySystem) Cube(size float32) (*renderer.Mesh, error) {
	return gs.Acquire(GenerateCubeConfig(size, size, size, 1, 1, fmt.Sprintf("%s_%g", CubeGeometryName, size)))
}

// Sphere returns a unit sphere with segments rings.
func (gs *GeometrySystem) Sphere(segments uint32) (*renderer.Mesh, error) {
	return gs.Acquire(GenerateSphereConfig(1, segments, fmt.Sprintf("%s_%d", SphereGeometryName, segments)))
}

// Plane returns a size x size floor facing +Y with the texture tiled once per unit.
func (gs *GeometrySystem) Plane(size float32) (*renderer.Mesh, error) {
	return gs.Acquire(GeneratePlaneConfig(size, size, 1, 1, size, size, fmt.Sprintf("%s_%g", PlaneGeometryName, size)))
}

// Canvas returns the fullscreen quad used by post effects and captures.
func (gs *GeometrySystem) Canvas() (*renderer.Mesh, error) {
	return gs.Acquire(GenerateCanvasConfig(CanvasGeometryName))
}

func (gs *GeometrySystem) Release(name string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if m, ok := gs.meshes[name]; ok {
		m.Destroy()
		delete(gs.meshes, name)
	}
}

func (gs *GeometrySystem) Count() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.meshes)
}

func (gs *GeometrySystem) Shutdown() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for name, m := range gs.meshes {
		m.Destroy()
		delete(gs.meshes, name)
	}
	return nil
}

func nonZero(value float32, what string) float32 {
	if value == 0 {
		core.LogWarn("%s must be nonzero. Defaulting to one.", what)
		return 1
	}
	return value
}

/**
 * @brief Generates a floor plane on the XZ axes facing +Y.
 * @param width The overall width of the plane. Must be non-zero.
 * @param depth The overall depth of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis.
 * @param zSegmentCount The number of segments along the z-axis.
 * @param tileX How often the texture repeats across the x-axis.
 * @param tileY How often the texture repeats across the z-axis.
 * @param name The name of the generated geometry.
 */
func GeneratePlaneConfig(width, depth float32, xSegmentCount, zSegmentCount uint32, tileX, tileY float32, name string) *metadata.GeometryConfig {
	width = nonZero(width, "width")
	depth = nonZero(depth, "depth")
	tileX = nonZero(tileX, "tileX")
	tileY = nonZero(tileY, "tileY")
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if zSegmentCount < 1 {
		core.LogWarn("zSegmentCount must be a positive number. Defaulting to one.")
		zSegmentCount = 1
	}

	config := &metadata.GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, xSegmentCount*zSegmentCount*4),
		Indices:  make([]uint32, xSegmentCount*zSegmentCount*6),
	}

	segWidth := width / float32(xSegmentCount)
	segDepth := depth / float32(zSegmentCount)
	halfWidth := width * 0.5
	halfDepth := depth * 0.5
	for z := uint32(0); z < zSegmentCount; z++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := float32(x)*segWidth - halfWidth
			minZ := float32(z)*segDepth - halfDepth
			maxX := minX + segWidth
			maxZ := minZ + segDepth
			minU := float32(x) / float32(xSegmentCount) * tileX
			minV := float32(z) / float32(zSegmentCount) * tileY
			maxU := float32(x+1) / float32(xSegmentCount) * tileX
			maxV := float32(z+1) / float32(zSegmentCount) * tileY

			offset := (z*xSegmentCount + x) * 4
			quad(config.Vertices[offset:offset+4],
				[4]math.Vec3{
					math.NewVec3(minX, 0, maxZ),
					math.NewVec3(maxX, 0, minZ),
					math.NewVec3(minX, 0, minZ),
					math.NewVec3(maxX, 0, maxZ),
				},
				math.NewVec2(minU, minV), math.NewVec2(maxU, maxV), math.NewVec3Up())
			quadIndices(config.Indices[(z*xSegmentCount+x)*6:], offset)
		}
	}

	math.GenerateTangents(config.Vertices, config.Indices)
	return config
}

/**
 * @brief Generates a cube centered on the origin, four vertices per side so
 * every face carries its own normal and texture coordinates.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name string) *metadata.GeometryConfig {
	width = nonZero(width, "width")
	height = nonZero(height, "height")
	depth = nonZero(depth, "depth")
	tileX = nonZero(tileX, "tileX")
	tileY = nonZero(tileY, "tileY")

	config := &metadata.GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, 4*6),
		Indices:  make([]uint32, 6*6),
	}

	x0, y0, z0 := -width*0.5, -height*0.5, -depth*0.5
	x1, y1, z1 := width*0.5, height*0.5, depth*0.5

	sides := [6]struct {
		corners [4]math.Vec3
		normal  math.Vec3
	}{
		// front
		{[4]math.Vec3{{x0, y0, z1}, {x1, y1, z1}, {x0, y1, z1}, {x1, y0, z1}}, math.NewVec3(0, 0, 1)},
		// back
		{[4]math.Vec3{{x1, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x0, y0, z0}}, math.NewVec3(0, 0, -1)},
		// left
		{[4]math.Vec3{{x0, y0, z0}, {x0, y1, z1}, {x0, y1, z0}, {x0, y0, z1}}, math.NewVec3(-1, 0, 0)},
		// right
		{[4]math.Vec3{{x1, y0, z1}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z0}}, math.NewVec3(1, 0, 0)},
		// bottom
		{[4]math.Vec3{{x1, y0, z1}, {x0, y0, z0}, {x1, y0, z0}, {x0, y0, z1}}, math.NewVec3(0, -1, 0)},
		// top
		{[4]math.Vec3{{x0, y1, z1}, {x1, y1, z0}, {x0, y1, z0}, {x1, y1, z1}}, math.NewVec3(0, 1, 0)},
	}
	for i, side := range sides {
		offset := uint32(i * 4)
		quad(config.Vertices[offset:offset+4], side.corners, math.NewVec2(0, 0), math.NewVec2(tileX, tileY), side.normal)
		quadIndices(config.Indices[i*6:], offset)
	}

	math.GenerateTangents(config.Vertices, config.Indices)
	return config
}

/**
 * @brief Generates a UV sphere. Rings run from the north pole down, each
 * ring has twice as many sectors as there are rings.
 */
func GenerateSphereConfig(radius float32, segments uint32, name string) *metadata.GeometryConfig {
	radius = nonZero(radius, "radius")
	if segments < 3 {
		core.LogWarn("sphere segments must be at least 3. Defaulting to 3.")
		segments = 3
	}
	rings := segments
	sectors := segments * 2

	config := &metadata.GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, 0, (rings+1)*(sectors+1)),
		Indices:  make([]uint32, 0, (rings-1)*sectors*6),
	}

	for y := uint32(0); y <= rings; y++ {
		v := float32(y) / float32(rings)
		phi := v * math.K_PI
		for x := uint32(0); x <= sectors; x++ {
			u := float32(x) / float32(sectors)
			theta := u * math.K_PI_2
			normal := math.NewVec3(math.Cos(theta)*math.Sin(phi), math.Cos(phi), math.Sin(theta)*math.Sin(phi))
			config.Vertices = append(config.Vertices, math.Vertex3D{
				Position: normal.MulScalar(radius),
				Normal:   normal,
				Texcoord: math.NewVec2(u, 1-v),
				Colour:   math.NewVec4One(),
			})
		}
	}

	stride := sectors + 1
	for y := uint32(0); y < rings; y++ {
		for x := uint32(0); x < sectors; x++ {
			a := y*stride + x
			b := a + stride
			// the triangles touching a pole collapse to a point
			if y != 0 {
				config.Indices = append(config.Indices, a, a+1, b)
			}
			if y != rings-1 {
				config.Indices = append(config.Indices, a+1, b+1, b)
			}
		}
	}

	math.GenerateTangents(config.Vertices, config.Indices)
	return config
}

// GenerateCanvasConfig is a quad covering clip space, facing +Z.
func GenerateCanvasConfig(name string) *metadata.GeometryConfig {
	config := &metadata.GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, 4),
		Indices:  make([]uint32, 6),
	}
	//  2    1
	//
	//  0    3
	quad(config.Vertices,
		[4]math.Vec3{{-1, -1, 0}, {1, 1, 0}, {-1, 1, 0}, {1, -1, 0}},
		math.NewVec2(0, 0), math.NewVec2(1, 1), math.NewVec3(0, 0, 1))
	quadIndices(config.Indices, 0)
	return config
}

// quad fills four vertices laid out min, max, (min.x, max.y), (max.x, min.y).
func quad(vertices []math.Vertex3D, corners [4]math.Vec3, uvMin, uvMax math.Vec2, normal math.Vec3) {
	uvs := [4]math.Vec2{
		uvMin,
		uvMax,
		math.NewVec2(uvMin.X, uvMax.Y),
		math.NewVec2(uvMax.X, uvMin.Y),
	}
	for i := range vertices[:4] {
		vertices[i] = math.Vertex3D{
			Position: corners[i],
			Normal:   normal,
			Texcoord: uvs[i],
			Colour:   math.NewVec4One(),
		}
	}
}

func quadIndices(indices []uint32, offset uint32) {
	copy(indices[:6], []uint32{offset, offset + 1, offset + 2, offset, offset + 3, offset + 1})
}
