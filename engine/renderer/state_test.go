package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	b, err := Transition(ResourceStatePresentable, ResourceStateRenderTarget)
	require.NoError(t, err)
	assert.Equal(t, Barrier{Before: ResourceStatePresentable, After: ResourceStateRenderTarget}, b)

	b, err = Transition(ResourceStateRenderTarget, ResourceStatePresentable)
	require.NoError(t, err)
	assert.Equal(t, ResourceStatePresentable, b.After)

	_, err = Transition(ResourceStatePresentable, ResourceStatePresentable)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Transition(ResourceStateRenderTarget, ResourceStateRenderTarget)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Transition(ResourceState(9), ResourceStatePresentable)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResourceTracker(t *testing.T) {
	tr := NewResourceTracker(2)
	assert.Equal(t, uint32(2), tr.Len())
	assert.Equal(t, ResourceStatePresentable, tr.State(0))
	assert.Equal(t, ResourceStatePresentable, tr.State(1))

	_, err := tr.Transition(1, ResourceStateRenderTarget)
	require.NoError(t, err)
	assert.Equal(t, ResourceStateRenderTarget, tr.State(1))
	assert.Equal(t, ResourceStatePresentable, tr.State(0))

	// a second transition to the same state is rejected and changes nothing
	_, err = tr.Transition(1, ResourceStateRenderTarget)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ResourceStateRenderTarget, tr.State(1))

	_, err = tr.Transition(2, ResourceStateRenderTarget)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFrameStateOrder(t *testing.T) {
	order := []FrameState{
		FrameIdle,
		FrameRecordingBarrierIn,
		FrameRecordingDraws,
		FrameRecordingBarrierOut,
		FrameSubmitted,
		FramePresented,
		FrameSynced,
		FrameIdle,
	}
	for i := 0; i+1 < len(order); i++ {
		assert.Equal(t, order[i+1], order[i].next(), "after %s", order[i])
	}
	assert.Equal(t, "recording-draws", FrameRecordingDraws.String())
}

func TestCubeGeometry(t *testing.T) {
	g := NewCubeGeometry(5)
	require.Len(t, g.Vertices, CubeVertexCount)
	require.Len(t, g.Indices, CubeIndexCount)
	assert.Equal(t, uint32(CubeIndexCount), g.IndexCount())

	for _, i := range g.Indices {
		assert.Less(t, int(i), CubeVertexCount)
	}
	for i, v := range g.Vertices {
		// every face normal points away from the center
		assert.InDelta(t, 5, v.Position.Dot(v.Normal), 1e-4, "vertex %d", i)
		assert.InDelta(t, 1, v.Normal.Length(), 1e-5)
		assert.True(t, v.Texcoord.X == 0 || v.Texcoord.X == 1)
		assert.True(t, v.Texcoord.Y == 0 || v.Texcoord.Y == 1)
	}
	assert.Equal(t, float32(-5), g.Extents.Min.X)
	assert.Equal(t, float32(5), g.Extents.Max.Z)
}
