package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type listener struct {
	name  string
	calls int
	stop  bool
}

func (l *listener) onEvent(code SystemEventCode, sender interface{}, inst interface{}, data EventContext) bool {
	l.calls++
	return l.stop
}

func TestEventBusRegisterAndFire(t *testing.T) {
	bus := NewEventBus()
	a := &listener{name: "a"}
	b := &listener{name: "b"}

	assert.True(t, bus.Register(EVENT_CODE_RESIZED, a, a.onEvent))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, b, b.onEvent))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, a, a.onEvent), "duplicate listener")
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, &listener{}, nil))

	assert.False(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
}

func TestEventBusHandledStopsPropagation(t *testing.T) {
	bus := NewEventBus()
	a := &listener{stop: true}
	b := &listener{}
	bus.Register(EVENT_CODE_APPLICATION_QUIT, a, a.onEvent)
	bus.Register(EVENT_CODE_APPLICATION_QUIT, b, b.onEvent)

	assert.True(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestEventBusUnregister(t *testing.T) {
	bus := NewEventBus()
	a := &listener{}
	b := &listener{}
	c := &listener{}
	bus.Register(EVENT_CODE_KEY_PRESSED, a, a.onEvent)
	bus.Register(EVENT_CODE_KEY_PRESSED, b, b.onEvent)
	bus.Register(EVENT_CODE_KEY_PRESSED, c, c.onEvent)

	// removes the matching entry, not the last one
	assert.True(t, bus.Unregister(EVENT_CODE_KEY_PRESSED, b))
	assert.False(t, bus.Unregister(EVENT_CODE_KEY_PRESSED, b))

	bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
	assert.Equal(t, 1, c.calls)

	bus.Shutdown()
	bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	assert.Equal(t, 1, a.calls)
}
