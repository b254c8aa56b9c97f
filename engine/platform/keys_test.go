package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/triangle/engine/core"
)

func TestTranslateKey(t *testing.T) {
	cases := map[glfw.Key]core.KeyCode{
		glfw.KeyA:           core.KEY_A,
		glfw.KeyZ:           core.KEY_Z,
		glfw.KeyW:           core.KEY_W,
		glfw.Key0:           core.KEY_0,
		glfw.Key3:           core.KEY_3,
		glfw.KeyEscape:      core.KEY_ESCAPE,
		glfw.KeyLeftControl: core.KEY_LCONTROL,
		glfw.KeySpace:       core.KEY_SPACE,
	}
	for key, want := range cases {
		got, ok := translateKey(key)
		assert.True(t, ok, "key %d", key)
		assert.Equal(t, want, got, "key %d", key)
	}

	_, ok := translateKey(glfw.KeyF12)
	assert.False(t, ok)
}
