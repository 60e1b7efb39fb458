package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/cubechain/engine/core"
)

var (
	ErrInvalidFrameState = errors.New("invalid frame state transition")
	ErrBufferNotMapped   = errors.New("constant buffer is not mapped")
)

// FrameState is where the frame loop is within the current frame.
type FrameState uint8

const (
	FrameIdle FrameState = iota
	FrameRecordingBarrierIn
	FrameRecordingDraws
	FrameRecordingBarrierOut
	FrameSubmitted
	FramePresented
	FrameSynced
)

var frameStateNames = [...]string{
	FrameIdle:                "idle",
	FrameRecordingBarrierIn:  "recording-barrier-in",
	FrameRecordingDraws:      "recording-draws",
	FrameRecordingBarrierOut: "recording-barrier-out",
	FrameSubmitted:           "submitted",
	FramePresented:           "presented",
	FrameSynced:              "synced",
}

func (s FrameState) String() string {
	if int(s) < len(frameStateNames) {
		return frameStateNames[s]
	}
	return fmt.Sprintf("FrameState(%d)", uint8(s))
}

// next is the only legal successor of a state.
func (s FrameState) next() FrameState {
	if s == FrameSynced {
		return FrameIdle
	}
	return s + 1
}

// FrameResources is the static state bound on every frame.
type FrameResources struct {
	Pipeline     Pipeline
	Mesh         Mesh
	Material     ConstantBuffer
	Texture      Texture
	Viewport     Viewport
	Clear        ClearValues
	SyncInterval uint32
}

// FrameController drives one frame at a time through record, submit,
// present and sync. There is a single command list, so the CPU never
// starts recording frame N+1 before the GPU is done with frame N.
type FrameController struct {
	queue     Queue
	swapChain SwapChain
	list      CommandList
	fence     Fence

	fenceValue      uint64
	state           FrameState
	backBuffers     *ResourceTracker
	backBufferIndex uint32
	resources       FrameResources
}

// NewFrameController creates the command list and the fence. The list is
// left open so that the first frame can record straight away.
func NewFrameController(backend RendererBackend, resources FrameResources) (*FrameController, error) {
	list, err := backend.CreateCommandList()
	if err != nil {
		core.LogError("failed to create command list: %s", err)
		return nil, err
	}
	fence, err := backend.CreateFence(0)
	if err != nil {
		list.Destroy()
		core.LogError("failed to create fence: %s", err)
		return nil, err
	}
	if err := list.Reset(); err != nil {
		fence.Destroy()
		list.Destroy()
		return nil, err
	}
	return &FrameController{
		queue:       backend.Queue(),
		swapChain:   backend.SwapChain(),
		list:        list,
		fence:       fence,
		state:       FrameIdle,
		backBuffers: NewResourceTracker(backend.SwapChain().BufferCount()),
		resources:   resources,
	}, nil
}

func (fc *FrameController) State() FrameState {
	return fc.state
}

// FenceValue is the last value signaled on the queue.
func (fc *FrameController) FenceValue() uint64 {
	return fc.fenceValue
}

func (fc *FrameController) BackBufferIndex() uint32 {
	return fc.backBufferIndex
}

func (fc *FrameController) BackBufferState(index uint32) ResourceState {
	return fc.backBuffers.State(index)
}

func (fc *FrameController) advance(to FrameState) error {
	if fc.state.next() != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidFrameState, fc.state, to)
	}
	fc.state = to
	return nil
}

// RenderFrame records, submits and presents one frame that draws the cube
// once per transform buffer, in order, then waits for the GPU.
func (fc *FrameController) RenderFrame(transforms []ConstantBuffer) error {
	if err := fc.BeginFrame(); err != nil {
		return err
	}
	if err := fc.RecordDraws(transforms); err != nil {
		return err
	}
	if err := fc.EndFrame(); err != nil {
		return err
	}
	if err := fc.Submit(); err != nil {
		return err
	}
	if err := fc.Present(); err != nil {
		return err
	}
	return fc.WaitForFrameSlot()
}

// BeginFrame acquires the back buffer and records its transition to a
// render target.
func (fc *FrameController) BeginFrame() error {
	if err := fc.advance(FrameRecordingBarrierIn); err != nil {
		return err
	}
	index, err := fc.swapChain.AcquireBackBuffer()
	if err != nil {
		return fmt.Errorf("acquire back buffer: %w", err)
	}
	if count := fc.swapChain.BufferCount(); count != fc.backBuffers.Len() {
		// the swap chain was rebuilt; fresh buffers start presentable
		fc.backBuffers = NewResourceTracker(count)
	}
	fc.backBufferIndex = index

	barrier, err := fc.backBuffers.Transition(index, ResourceStateRenderTarget)
	if err != nil {
		return err
	}
	fc.list.ResourceBarrier(index, barrier)
	return nil
}

// RecordDraws clears the targets, binds the shared state and issues one
// indexed draw per transform buffer.
func (fc *FrameController) RecordDraws(transforms []ConstantBuffer) error {
	if err := fc.advance(FrameRecordingDraws); err != nil {
		return err
	}
	res := fc.resources
	fc.list.BeginRenderTarget(fc.backBufferIndex, res.Clear)
	fc.list.SetViewport(res.Viewport)
	fc.list.SetPipeline(res.Pipeline)
	fc.list.BindConstantBuffer(SlotMaterial, res.Material)
	fc.list.BindTexture(res.Texture)

	indexCount := res.Mesh.IndexCount()
	for _, t := range transforms {
		fc.list.BindMesh(res.Mesh)
		fc.list.BindConstantBuffer(SlotTransform, t)
		fc.list.DrawIndexed(indexCount)
	}
	fc.list.EndRenderTarget()
	return nil
}

// EndFrame records the transition of the back buffer back to presentable.
func (fc *FrameController) EndFrame() error {
	if err := fc.advance(FrameRecordingBarrierOut); err != nil {
		return err
	}
	barrier, err := fc.backBuffers.Transition(fc.backBufferIndex, ResourceStatePresentable)
	if err != nil {
		return err
	}
	fc.list.ResourceBarrier(fc.backBufferIndex, barrier)
	return nil
}

func (fc *FrameController) Submit() error {
	if err := fc.advance(FrameSubmitted); err != nil {
		return err
	}
	if err := fc.list.Close(); err != nil {
		return fmt.Errorf("close command list: %w", err)
	}
	if err := fc.queue.Submit(fc.list); err != nil {
		return fmt.Errorf("submit command list: %w", err)
	}
	return nil
}

func (fc *FrameController) Present() error {
	if err := fc.advance(FramePresented); err != nil {
		return err
	}
	if err := fc.swapChain.Present(fc.resources.SyncInterval); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// WaitForFrameSlot signals the next fence value, blocks until the GPU
// reaches it and only then resets the command list for the next frame.
func (fc *FrameController) WaitForFrameSlot() error {
	if err := fc.advance(FrameSynced); err != nil {
		return err
	}
	fc.fenceValue++
	if err := fc.queue.Signal(fc.fence, fc.fenceValue); err != nil {
		return fmt.Errorf("signal fence %d: %w", fc.fenceValue, err)
	}
	if fc.fence.CompletedValue() < fc.fenceValue {
		if err := fc.fence.Wait(fc.fenceValue); err != nil {
			return fmt.Errorf("wait fence %d: %w", fc.fenceValue, err)
		}
	}
	if err := fc.list.Reset(); err != nil {
		return fmt.Errorf("reset command list: %w", err)
	}
	return fc.advance(FrameIdle)
}

// Destroy releases the command list and the fence. The caller waits for
// the device to go idle first.
func (fc *FrameController) Destroy() {
	if fc.list != nil {
		fc.list.Destroy()
		fc.list = nil
	}
	if fc.fence != nil {
		fc.fence.Destroy()
		fc.fence = nil
	}
}
