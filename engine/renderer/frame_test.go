package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/headless"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() renderer.Config {
	return renderer.Config{
		Width:          1280,
		Height:         720,
		FovY:           45,
		Near:           0.1,
		Far:            1000,
		ClearColor:     [4]float32{0.1, 0.25, 0.5, 0},
		ClearDepth:     1,
		MaterialColor:  [4]float32{1, 1, 1, 1},
		BoundTexture:   1,
		SyncInterval:   1,
		CubeHalfExtent: 5,
	}
}

func testTexture(name string) *metadata.Texture {
	return &metadata.Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Format: metadata.TextureFormatRGBA8SRGB,
		Mips:   []metadata.MipLevel{{Width: 1, Height: 1, Pixels: []uint8{255, 255, 255, 255}}},
	}
}

func newTestRenderer(t *testing.T, opts headless.Options) (*renderer.Renderer, *headless.Backend) {
	t.Helper()
	backend := headless.New(opts)
	r := renderer.New(backend)
	require.NoError(t, r.Initialize("test", testConfig(), nil, []*metadata.Texture{testTexture("texture"), testTexture("reimu")}))
	return r, backend
}

func newBindings(t *testing.T, r *renderer.Renderer, n int) []*renderer.ConstantBufferBinding {
	t.Helper()
	bindings := make([]*renderer.ConstantBufferBinding, n)
	for i := range bindings {
		b, err := r.NewTransformBinding()
		require.NoError(t, err)
		b.WriteMatrix(math.NewMat4Translation(math.NewVec3(float32(i), 0, 0)))
		bindings[i] = b
	}
	return bindings
}

func TestFrameCommandSequence(t *testing.T) {
	r, backend := newTestRenderer(t, headless.Options{})
	bindings := newBindings(t, r, 3)
	backend.Journal().Clear()

	require.NoError(t, r.DrawFrame(bindings))
	assert.Equal(t, renderer.FrameIdle, r.Frames().State())

	want := []headless.Op{
		headless.OpAcquire,
		headless.OpResourceBarrier,
		headless.OpBeginRenderTarget,
		headless.OpSetViewport,
		headless.OpSetPipeline,
		headless.OpBindConstantBuffer,
		headless.OpBindTexture,
	}
	for range bindings {
		want = append(want, headless.OpBindMesh, headless.OpBindConstantBuffer, headless.OpDrawIndexed)
	}
	want = append(want,
		headless.OpEndRenderTarget,
		headless.OpResourceBarrier,
		headless.OpClose,
		headless.OpSubmit,
		headless.OpPresent,
		headless.OpSignal,
		headless.OpWait,
		headless.OpReset,
	)
	assert.Equal(t, want, backend.Journal().Ops())

	barriers := backend.Journal().Filter(headless.OpResourceBarrier)
	require.Len(t, barriers, 2)
	assert.Equal(t, renderer.Barrier{Before: renderer.ResourceStatePresentable, After: renderer.ResourceStateRenderTarget}, barriers[0].Barrier)
	assert.Equal(t, renderer.Barrier{Before: renderer.ResourceStateRenderTarget, After: renderer.ResourceStatePresentable}, barriers[1].Barrier)

	begin := backend.Journal().Filter(headless.OpBeginRenderTarget)[0]
	assert.Equal(t, [4]float32{0.1, 0.25, 0.5, 0}, begin.Clear.Color)
	assert.Equal(t, float32(1), begin.Clear.Depth)

	vp := backend.Journal().Filter(headless.OpSetViewport)[0]
	assert.Equal(t, float32(1280), vp.Viewport.Width)
	assert.Equal(t, float32(720), vp.Viewport.Height)

	for _, d := range backend.Journal().Filter(headless.OpDrawIndexed) {
		assert.Equal(t, uint32(renderer.CubeIndexCount), d.IndexCount)
	}
	assert.Equal(t, uint32(1), backend.Journal().Filter(headless.OpPresent)[0].SyncInterval)
}

func TestFrameDrawsEveryTransformInOrder(t *testing.T) {
	r, backend := newTestRenderer(t, headless.Options{})
	bindings := newBindings(t, r, 5)
	backend.Journal().Clear()

	require.NoError(t, r.DrawFrame(bindings))

	var transforms []uint32
	var material []uint32
	for _, c := range backend.Journal().Filter(headless.OpBindConstantBuffer) {
		switch c.Slot {
		case renderer.SlotTransform:
			transforms = append(transforms, c.Resource)
		case renderer.SlotMaterial:
			material = append(material, c.Resource)
		}
	}
	want := make([]uint32, len(bindings))
	for i, b := range bindings {
		id, ok := headless.ID(b.Buffer())
		require.True(t, ok)
		want[i] = id
	}
	assert.Equal(t, want, transforms)
	assert.Len(t, material, 1)
}

func TestFrameResetWaitsForFence(t *testing.T) {
	for _, immediate := range []bool{false, true} {
		r, backend := newTestRenderer(t, headless.Options{ImmediateFence: immediate})
		bindings := newBindings(t, r, 2)

		for i := 0; i < 6; i++ {
			require.NoError(t, r.DrawFrame(bindings))
		}
		assert.Equal(t, uint64(6), r.Frames().FenceValue())

		resets := backend.Journal().Filter(headless.OpReset)
		// one reset when the controller is created, then one per frame
		require.Len(t, resets, 7)
		for _, c := range resets {
			assert.GreaterOrEqual(t, c.Completed, c.Signaled)
		}

		signals := backend.Journal().Filter(headless.OpSignal)
		for i, c := range signals {
			assert.Equal(t, uint64(i+1), c.Value, "fence values increase by one per frame")
		}

		waits := backend.Journal().Filter(headless.OpWait)
		if immediate {
			assert.Empty(t, waits, "no wait when the fence already completed")
		} else {
			assert.Len(t, waits, 6)
		}
	}
}

func TestFrameBackBuffersAlternate(t *testing.T) {
	r, backend := newTestRenderer(t, headless.Options{BufferCount: 2})
	bindings := newBindings(t, r, 1)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.DrawFrame(bindings))
		assert.Equal(t, uint32(i%2), r.Frames().BackBufferIndex())
		assert.Equal(t, renderer.ResourceStatePresentable, r.Frames().BackBufferState(0))
		assert.Equal(t, renderer.ResourceStatePresentable, r.Frames().BackBufferState(1))
	}
	var acquired []uint32
	for _, c := range backend.Journal().Filter(headless.OpAcquire) {
		acquired = append(acquired, c.BackBuffer)
	}
	assert.Equal(t, []uint32{0, 1, 0, 1}, acquired)
}

func TestFrameStepsOutOfOrder(t *testing.T) {
	r, _ := newTestRenderer(t, headless.Options{})
	fc := r.Frames()

	assert.ErrorIs(t, fc.EndFrame(), renderer.ErrInvalidFrameState)
	assert.ErrorIs(t, fc.WaitForFrameSlot(), renderer.ErrInvalidFrameState)
	assert.Equal(t, renderer.FrameIdle, fc.State())

	require.NoError(t, fc.BeginFrame())
	assert.Equal(t, renderer.FrameRecordingBarrierIn, fc.State())
	assert.ErrorIs(t, fc.BeginFrame(), renderer.ErrInvalidFrameState)
	assert.ErrorIs(t, fc.Submit(), renderer.ErrInvalidFrameState)
	assert.Equal(t, renderer.ResourceStateRenderTarget, fc.BackBufferState(fc.BackBufferIndex()))

	require.NoError(t, fc.RecordDraws(nil))
	require.NoError(t, fc.EndFrame())
	require.NoError(t, fc.Submit())
	require.NoError(t, fc.Present())
	assert.Equal(t, renderer.FramePresented, fc.State())
	require.NoError(t, fc.WaitForFrameSlot())
	assert.Equal(t, renderer.FrameIdle, fc.State())
	assert.Equal(t, uint64(1), fc.FenceValue())
}

func TestRendererProjection(t *testing.T) {
	r, _ := newTestRenderer(t, headless.Options{})
	want := math.NewMat4PerspectiveLH(math.DegToRad(45), 1280.0/720.0, 0.1, 1000)
	assert.Equal(t, want, r.Projection())
}

func TestRendererRejectsMissingTexture(t *testing.T) {
	backend := headless.New(headless.Options{})
	r := renderer.New(backend)
	err := r.Initialize("test", testConfig(), nil, []*metadata.Texture{testTexture("only")})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestRendererShutdownReleasesResources(t *testing.T) {
	r, backend := newTestRenderer(t, headless.Options{})
	bindings := newBindings(t, r, 4)
	require.NoError(t, r.DrawFrame(bindings))
	assert.Greater(t, backend.LiveResources(), 0)

	require.NoError(t, r.WaitIdle())
	for _, b := range bindings {
		b.Destroy()
	}
	require.NoError(t, r.Shutdown())
	assert.Equal(t, 0, backend.LiveResources())
	assert.Len(t, backend.Journal().Filter(headless.OpWaitIdle), 1, "shutdown relies on the caller's wait")
}
