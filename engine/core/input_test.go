package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputStatePredicates(t *testing.T) {
	r := NewKeyboardRecorder(nil)

	// frame 1: nothing pressed yet
	s := r.Snapshot()
	assert.False(t, s.IsHeld(KEY_D))
	assert.False(t, s.WasJustPressed(KEY_D))
	assert.True(t, s.WasJustReleased(KEY_D), "idle key counts as released")

	// frame 2: D goes down
	require.NoError(t, r.ProcessKey(KEY_D, true))
	s = r.Snapshot()
	assert.True(t, s.IsHeld(KEY_D))
	assert.True(t, s.WasJustPressed(KEY_D))
	assert.False(t, s.WasJustReleased(KEY_D))

	// frame 3: still held
	s = r.Snapshot()
	assert.True(t, s.IsHeld(KEY_D))
	assert.False(t, s.WasJustPressed(KEY_D))

	// frame 4: D goes up; the release frame itself does not report a release
	require.NoError(t, r.ProcessKey(KEY_D, false))
	s = r.Snapshot()
	assert.False(t, s.IsHeld(KEY_D))
	assert.False(t, s.WasJustPressed(KEY_D))
	assert.False(t, s.WasJustReleased(KEY_D))

	// frame 5: up for two frames in a row
	s = r.Snapshot()
	assert.True(t, s.WasJustReleased(KEY_D))

	// and it stays true for as long as the key is idle
	s = r.Snapshot()
	assert.True(t, s.WasJustReleased(KEY_D))
}

func TestInputStateOutOfRange(t *testing.T) {
	s := InputState{}
	assert.False(t, s.IsHeld(KEYS_MAX_KEYS))
	assert.False(t, s.WasJustPressed(KEYS_MAX_KEYS+3))
	assert.False(t, s.WasJustReleased(KEYS_MAX_KEYS))

	r := NewKeyboardRecorder(nil)
	assert.ErrorIs(t, r.ProcessKey(KEYS_MAX_KEYS, true), ErrUnknownKey)
}

func TestInputStateIsAValue(t *testing.T) {
	r := NewKeyboardRecorder(nil)
	require.NoError(t, r.ProcessKey(KEY_UP, true))
	s := r.Snapshot()

	require.NoError(t, r.ProcessKey(KEY_UP, false))
	assert.True(t, s.IsHeld(KEY_UP), "later events must not leak into an old snapshot")
}

func TestKeyboardRecorderFiresEvents(t *testing.T) {
	bus := NewEventBus()
	var pressed, released []KeyCode
	bus.Register(EVENT_CODE_KEY_PRESSED, "test", func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		pressed = append(pressed, KeyCode(data.Data.U16[0]))
		return true
	})
	bus.Register(EVENT_CODE_KEY_RELEASED, "test", func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		released = append(released, KeyCode(data.Data.U16[0]))
		return true
	})

	r := NewKeyboardRecorder(bus)
	require.NoError(t, r.ProcessKey(KEY_W, true))
	require.NoError(t, r.ProcessKey(KEY_W, true)) // repeat, ignored
	require.NoError(t, r.ProcessKey(KEY_W, false))
	require.NoError(t, r.ProcessKey(KEY_ESCAPE, true))

	assert.Equal(t, []KeyCode{KEY_W, KEY_ESCAPE}, pressed)
	assert.Equal(t, []KeyCode{KEY_W}, released)
}

func TestKeyboardRecorderReset(t *testing.T) {
	r := NewKeyboardRecorder(nil)
	require.NoError(t, r.ProcessKey(KEY_LEFT, true))
	r.Snapshot()
	r.Reset()
	s := r.Snapshot()
	assert.False(t, s.IsHeld(KEY_LEFT))
	assert.True(t, s.Previous.Keys[KEY_LEFT])
}
