package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/triangle/engine/math"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, float32(45), c.Fov)
	assert.True(t, c.Forward().Compare(math.NewVec3Forward(), 1e-6))
	assert.True(t, c.Left().Compare(math.NewVec3Left(), 1e-6))
}

func TestCameraViewTransformsPosition(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(0, 2, 8))

	eye := c.Position.Transform(c.View())
	assert.True(t, eye.Compare(math.NewVec3Zero(), 1e-5))

	ahead := math.NewVec3(0, 2, 3).Transform(c.View())
	assert.True(t, ahead.Compare(math.NewVec3(0, 0, -5), 1e-5))
}

func TestCameraFly(t *testing.T) {
	c := NewCamera()
	c.MoveForward(2)
	c.MoveRight(1)
	c.MoveUp(3)
	assert.True(t, c.Position.Compare(math.NewVec3(1, 3, -2), 1e-5))
	assert.True(t, c.IsDirty)
	c.View()
	assert.False(t, c.IsDirty)
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	assert.Equal(t, pitchLimit, c.EulerRotation.X)
	c.Pitch(-20)
	assert.Equal(t, -pitchLimit, c.EulerRotation.X)
}

func TestCameraYawTurnsLeft(t *testing.T) {
	c := NewCamera()
	c.Yaw(math.K_PI / 2)
	assert.True(t, c.Forward().Compare(math.NewVec3Left(), 1e-5))
}

func TestCameraAspect(t *testing.T) {
	c := NewCamera()
	c.SetViewport(1600, 900)
	assert.InDelta(t, 1.7777, c.Aspect(), 1e-3)
	c.SetViewport(0, 10)
	assert.Equal(t, uint32(1600), c.Width)
}
