package components

import (
	"github.com/spaghettifunk/triangle/engine/math"
)

/**
 * @brief A perspective fly camera. Rotation is stored as Euler angles
 * (pitch, yaw, roll) in radians; roll is ignored.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead.
	 */
	EulerRotation math.Vec3

	/** @brief Vertical field of view in degrees. */
	Fov  float32
	Near float32
	Far  float32
	/** @brief Fly speed in units per second. */
	Speed float32
	/** @brief Look speed in radians per pixel. */
	Sensitivity float32

	Width  uint32
	Height uint32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	ViewMatrix math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

// pitchLimit is 89 degrees, avoiding the flip at the poles.
const pitchLimit float32 = 1.55334306

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.Fov = 45
	c.Near = 0.1
	c.Far = 1000
	c.Speed = 5
	c.Sensitivity = 0.005
	c.Width = 1
	c.Height = 1
	c.IsDirty = true
	c.ViewMatrix = math.NewMat4Identity()
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	rotation.X = math.Clamp(rotation.X, -pitchLimit, pitchLimit)
	c.EulerRotation = rotation
	c.IsDirty = true
}

// SetViewport updates the aspect ratio source. Zero sizes are ignored.
func (c *Camera) SetViewport(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.Width, c.Height = width, height
}

func (c *Camera) Aspect() float32 {
	return float32(c.Width) / float32(c.Height)
}

func (c *Camera) orientation() math.Quaternion {
	return math.NewQuatFromEuler(c.EulerRotation.X, c.EulerRotation.Y, 0)
}

func (c *Camera) Forward() math.Vec3 {
	return c.orientation().Rotate(math.NewVec3Forward())
}

func (c *Camera) Backward() math.Vec3 {
	return c.Forward().Negate()
}

func (c *Camera) Right() math.Vec3 {
	return c.orientation().Rotate(math.NewVec3Right())
}

func (c *Camera) Left() math.Vec3 {
	return c.Right().Negate()
}

func (c *Camera) View() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAt(c.Position, c.Position.Add(c.Forward()), math.NewVec3Up())
		c.IsDirty = false
	}
	return c.ViewMatrix
}

func (c *Camera) Projection() math.Mat4 {
	return math.NewMat4Perspective(math.DegToRad(c.Fov), c.Aspect(), c.Near, c.Far)
}

func (c *Camera) move(direction math.Vec3, amount float32) {
	c.Position = c.Position.Add(direction.MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward(), amount)
}

func (c *Camera) MoveBackward(amount float32) {
	c.move(c.Backward(), amount)
}

func (c *Camera) MoveLeft(amount float32) {
	c.move(c.Left(), amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right(), amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.move(math.NewVec3Up(), amount)
}

func (c *Camera) MoveDown(amount float32) {
	c.move(math.NewVec3Down(), amount)
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X+amount, -pitchLimit, pitchLimit)
	c.IsDirty = true
}
