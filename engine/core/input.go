package core

import "fmt"

// Key code definitions. Values follow the virtual-key table so that a
// KeyCode always indexes into KeyboardState.Keys.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
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
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_LMENU     KeyCode = 0xA4
	KEY_RMENU     KeyCode = 0xA5

	KEYS_MAX_KEYS KeyCode = 256
)

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// KeyEvent is a single press or release as reported by the platform layer.
type KeyEvent struct {
	KeyCode KeyCode
	Pressed bool
}

// InputState is the per-frame keyboard snapshot handed to update code.
// It is a plain value: copying it is how it gets passed around.
type InputState struct {
	Current  KeyboardState
	Previous KeyboardState
}

// IsHeld reports whether key is down this frame.
func (s InputState) IsHeld(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return s.Current.Keys[key]
}

// WasJustPressed reports whether key went down on this frame.
func (s InputState) WasJustPressed(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return s.Current.Keys[key] && !s.Previous.Keys[key]
}

// WasJustReleased is true while key is up on this frame and on the
// previous one. It does not detect the release edge itself: a key that went
// up this frame reports false here until the following frame.
func (s InputState) WasJustReleased(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return !s.Current.Keys[key] && !s.Previous.Keys[key]
}

// KeyboardRecorder accumulates platform key events between frames and
// produces one InputState per frame.
type KeyboardRecorder struct {
	live KeyboardState
	last KeyboardState
	bus  *EventBus
}

// NewKeyboardRecorder creates a recorder. bus may be nil, in which case no
// key events are fired.
func NewKeyboardRecorder(bus *EventBus) *KeyboardRecorder {
	return &KeyboardRecorder{bus: bus}
}

// ProcessKey records a key transition. Repeated reports of the same state
// are ignored.
func (r *KeyboardRecorder) ProcessKey(key KeyCode, pressed bool) error {
	if key >= KEYS_MAX_KEYS {
		return fmt.Errorf("%w: %d", ErrUnknownKey, key)
	}
	// Only handle this if the state actually changed.
	if r.live.Keys[key] == pressed {
		return nil
	}
	r.live.Keys[key] = pressed

	if r.bus != nil {
		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		ctx := EventContext{}
		ctx.Data.U16[0] = uint16(key)
		r.bus.Fire(code, r, ctx)
	}
	return nil
}

// Snapshot returns the state for the frame about to run. The previous half is
// whatever the last snapshot reported as current.
func (r *KeyboardRecorder) Snapshot() InputState {
	s := InputState{
		Current:  r.live,
		Previous: r.last,
	}
	r.last = r.live
	return s
}

// Reset releases every key, e.g. when the window loses focus.
func (r *KeyboardRecorder) Reset() {
	r.live = KeyboardState{}
}
