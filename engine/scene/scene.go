package scene

import (
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/components"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

type GizmoOperation int

const (
	GizmoTranslate GizmoOperation = iota
	GizmoRotate
	GizmoScale
)

func (g GizmoOperation) String() string {
	switch g {
	case GizmoRotate:
		return "Rotate"
	case GizmoScale:
		return "Scale"
	}
	return "Translate"
}

const DefaultSamples int32 = 4

/**
 * @brief A viewport into the world. It owns the fly camera and the
 * multisampled frame everything is drawn into between Begin and End.
 */
type Scene struct {
	Name      string
	Camera    *components.Camera
	Samples   int32
	Operation GizmoOperation

	Width  uint32
	Height uint32
	// Hovered gates camera input, Focused gates picking.
	Hovered bool
	Focused bool
	// OperatingTools is set while a gizmo consumes the mouse.
	OperatingTools bool

	Time      float32
	DeltaTime float32
	Light     materials.SceneData

	input     *core.InputState
	frame     *renderer.Frame
	resized   []func(width, height uint32)
	firstMove bool
	lastX     float32
	lastY     float32
}

func NewScene(ctx renderer.Context, input *core.InputState, name string) *Scene {
	camera := components.NewCamera()
	camera.Fov = 45
	camera.SetPosition(math.NewVec3(0, 2, 8))

	return &Scene{
		Name:      name,
		Camera:    camera,
		Samples:   DefaultSamples,
		Operation: GizmoTranslate,
		Hovered:   true,
		Focused:   true,
		Light:     materials.DefaultSceneData(),
		input:     input,
		frame:     renderer.NewFrame(ctx),
		firstMove: true,
	}
}

func (s *Scene) Frame() *renderer.Frame {
	return s.frame
}

// OnResize registers fn to run whenever the viewport size changes.
func (s *Scene) OnResize(fn func(width, height uint32)) {
	s.resized = append(s.resized, fn)
}

func (s *Scene) Resize(width, height uint32) {
	if width == s.Width && height == s.Height {
		return
	}
	s.Width, s.Height = width, height
	s.Camera.SetViewport(width, height)
	for _, fn := range s.resized {
		fn(width, height)
	}
}

// Update advances time and applies fly camera input.
func (s *Scene) Update(deltaSeconds float64) {
	dt := float32(deltaSeconds)
	s.DeltaTime = dt
	s.Time += dt

	if !s.Hovered || s.input == nil {
		return
	}

	if s.input.IsButtonDown(core.BUTTON_RIGHT) {
		x, y := s.input.MousePosition()
		if s.firstMove {
			s.firstMove = false
		} else {
			s.Camera.Yaw(-(x - s.lastX) * s.Camera.Sensitivity)
			s.Camera.Pitch(-(y - s.lastY) * s.Camera.Sensitivity)
		}
		s.lastX, s.lastY = x, y
	} else {
		s.firstMove = true
	}

	step := s.Camera.Speed * dt
	moves := []struct {
		key  core.KeyCode
		move func(float32)
	}{
		{core.KEY_W, s.Camera.MoveForward},
		{core.KEY_S, s.Camera.MoveBackward},
		{core.KEY_A, s.Camera.MoveLeft},
		{core.KEY_D, s.Camera.MoveRight},
		{core.KEY_Q, s.Camera.MoveDown},
		{core.KEY_E, s.Camera.MoveUp},
	}
	for _, m := range moves {
		if s.input.IsKeyDown(m.key) {
			m.move(step)
		}
	}

	switch {
	case s.input.IsKeyDown(core.KEY_1):
		s.Operation = GizmoTranslate
	case s.input.IsKeyDown(core.KEY_2):
		s.Operation = GizmoRotate
	case s.input.IsKeyDown(core.KEY_3):
		s.Operation = GizmoScale
	}
}

// Begin redirects drawing into the scene frame.
func (s *Scene) Begin() error {
	if s.Width == 0 || s.Height == 0 {
		return nil
	}
	if err := s.frame.Update(s.Width, s.Height, s.Samples, metadata.PixelFormatRGBA8); err != nil {
		return err
	}
	s.frame.Bind()
	return nil
}

func (s *Scene) End() {
	if s.frame.Width == 0 {
		return
	}
	s.frame.Unbind()
}

func (s *Scene) SceneData() materials.SceneData {
	data := s.Light
	data.Time = s.Time
	data.DeltaTime = s.DeltaTime
	data.Width = s.Width
	data.Height = s.Height
	return data
}

// Parameters is what every global material draw of this scene receives.
func (s *Scene) Parameters() materials.GlobalParameters {
	params := materials.NewGlobalParameters(s.Camera)
	params.Scene = s.SceneData()
	return params
}

// PickInput reports this frame's click for the pickup controller.
func (s *Scene) PickInput() PickInput {
	in := PickInput{Width: s.Width, Height: s.Height, Samples: s.Samples}
	if s.input == nil {
		return in
	}
	in.X, in.Y = s.input.MousePosition()
	in.Clicked = s.Focused && !s.OperatingTools && s.input.IsButtonClicked(core.BUTTON_LEFT)
	in.MultiSelect = s.input.IsKeyDown(core.KEY_LCONTROL) || s.input.IsKeyDown(core.KEY_RCONTROL)
	return in
}

func (s *Scene) Destroy() {
	s.frame.Destroy()
}
