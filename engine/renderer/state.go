package renderer

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid resource state transition")

// ResourceState is the usage a back buffer is currently prepared for.
type ResourceState uint8

const (
	ResourceStatePresentable ResourceState = iota
	ResourceStateRenderTarget
)

func (s ResourceState) String() string {
	switch s {
	case ResourceStatePresentable:
		return "presentable"
	case ResourceStateRenderTarget:
		return "render-target"
	}
	return fmt.Sprintf("ResourceState(%d)", uint8(s))
}

// Barrier describes one state change of one resource.
type Barrier struct {
	Before ResourceState
	After  ResourceState
}

var legalTransitions = map[ResourceState]ResourceState{
	ResourceStatePresentable:  ResourceStateRenderTarget,
	ResourceStateRenderTarget: ResourceStatePresentable,
}

// Transition validates a state change and returns the barrier for it.
func Transition(from, to ResourceState) (Barrier, error) {
	next, ok := legalTransitions[from]
	if !ok || next != to {
		return Barrier{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return Barrier{Before: from, After: to}, nil
}

// ResourceTracker remembers the state of every back buffer.
type ResourceTracker struct {
	states []ResourceState
}

// NewResourceTracker starts all count buffers as presentable, which is how
// a swap chain hands them out.
func NewResourceTracker(count uint32) *ResourceTracker {
	return &ResourceTracker{states: make([]ResourceState, count)}
}

func (t *ResourceTracker) State(index uint32) ResourceState {
	return t.states[index]
}

func (t *ResourceTracker) Len() uint32 {
	return uint32(len(t.states))
}

// Transition moves buffer index to state to and returns the barrier to
// record. The tracked state is unchanged on error.
func (t *ResourceTracker) Transition(index uint32, to ResourceState) (Barrier, error) {
	if index >= uint32(len(t.states)) {
		return Barrier{}, fmt.Errorf("%w: back buffer %d of %d", ErrInvalidTransition, index, len(t.states))
	}
	b, err := Transition(t.states[index], to)
	if err != nil {
		return Barrier{}, err
	}
	t.states[index] = to
	return b, nil
}
