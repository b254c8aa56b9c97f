package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_LMENU     KeyCode = 0xA4
	KEY_RMENU     KeyCode = 0xA5
	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Mouse state structure
type MouseState struct {
	X       float32
	Y       float32
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS + 1]bool
}

// InputState holds current and previous states for keyboard and mouse.
// Process* calls come from the platform callbacks, queries come from the
// frame update; both run on the main thread but the mutex keeps the race
// detector quiet when tests drive it from goroutines.
type InputState struct {
	mu               sync.RWMutex
	events           *EventBus
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
}

// NewInputState creates an input state. events may be nil.
func NewInputState(events *EventBus) *InputState {
	return &InputState{events: events}
}

// Update copies current states to previous states. Call once per frame.
func (s *InputState) Update() {
	s.mu.Lock()
	s.keyboardPrevious = s.keyboardCurrent
	s.mousePrevious = s.mouseCurrent
	s.mu.Unlock()
}

// keyboard input
func (s *InputState) IsKeyDown(key KeyCode) bool {
	if key > KEYS_MAX_KEYS {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyboardCurrent.Keys[key]
}

func (s *InputState) WasKeyDown(key KeyCode) bool {
	if key > KEYS_MAX_KEYS {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyboardPrevious.Keys[key]
}

func (s *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key > KEYS_MAX_KEYS {
		return
	}
	s.mu.Lock()
	changed := s.keyboardCurrent.Keys[key] != pressed
	s.keyboardCurrent.Keys[key] = pressed
	s.mu.Unlock()

	// Only fire when the state actually changed.
	if changed && s.events != nil {
		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		s.events.Fire(EventContext{Type: code, Data: &KeyEvent{KeyCode: key}})
	}
}

// mouse input
func (s *InputState) IsButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mouseCurrent.Buttons[button]
}

func (s *InputState) WasButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mousePrevious.Buttons[button]
}

// IsButtonClicked reports a press that happened since the last Update.
func (s *InputState) IsButtonClicked(button Button) bool {
	return s.IsButtonDown(button) && !s.WasButtonDown(button)
}

func (s *InputState) MousePosition() (float32, float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mouseCurrent.X, s.mouseCurrent.Y
}

func (s *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	s.mu.Lock()
	changed := s.mouseCurrent.Buttons[button] != pressed
	s.mouseCurrent.Buttons[button] = pressed
	s.mu.Unlock()

	if changed && s.events != nil {
		code := EVENT_CODE_BUTTON_RELEASED
		if pressed {
			code = EVENT_CODE_BUTTON_PRESSED
		}
		s.events.Fire(EventContext{Type: code, Data: &MouseEvent{Button: button}})
	}
}

func (s *InputState) ProcessMouseMove(x, y float32) {
	s.mu.Lock()
	changed := s.mouseCurrent.X != x || s.mouseCurrent.Y != y
	s.mouseCurrent.X = x
	s.mouseCurrent.Y = y
	s.mu.Unlock()

	if changed && s.events != nil {
		s.events.Fire(EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{PosX: x, PosY: y}})
	}
}

func (s *InputState) ProcessMouseWheel(delta float32) {
	if s.events != nil {
		s.events.Fire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL, Data: &MouseEvent{Scroll: delta}})
	}
}
