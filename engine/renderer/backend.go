package renderer

import (
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

// BindingSlot is the position of a resource in the pipeline's resource
// layout. The layout is the same for every pipeline the renderer builds.
type BindingSlot uint8

const (
	// SlotMaterial holds the shared material constant buffer.
	SlotMaterial BindingSlot = iota
	// SlotTexture holds the sampled texture.
	SlotTexture
	// SlotTransform holds the per-object world-view-projection buffer.
	SlotTransform
)

func (s BindingSlot) String() string {
	switch s {
	case SlotMaterial:
		return "material"
	case SlotTexture:
		return "texture"
	case SlotTransform:
		return "transform"
	}
	return "unknown"
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type ClearValues struct {
	Color [4]float32
	Depth float32
}

// ConstantBuffer is an upload buffer that stays mapped for its whole life.
type ConstantBuffer interface {
	// Mapped returns the CPU view of the buffer. Writes are visible to the
	// GPU without any flush.
	Mapped() []byte
	Size() uint64
	Destroy()
}

// Mesh is an uploaded vertex + index buffer pair.
type Mesh interface {
	IndexCount() uint32
	Destroy()
}

type Texture interface {
	Name() string
	Destroy()
}

type Pipeline interface {
	Destroy()
}

// CommandList records GPU work. It is open for recording after Reset and
// until Close.
type CommandList interface {
	// Reset makes the list and its backing memory reusable. The caller
	// guarantees the GPU has finished every previous submission of the list.
	Reset() error
	Close() error
	ResourceBarrier(backBuffer uint32, barrier Barrier)
	// BeginRenderTarget binds the back buffer and the depth buffer and
	// clears both.
	BeginRenderTarget(backBuffer uint32, clear ClearValues)
	EndRenderTarget()
	// SetViewport sets the viewport and a scissor rectangle covering it.
	SetViewport(viewport Viewport)
	SetPipeline(pipeline Pipeline)
	BindConstantBuffer(slot BindingSlot, buffer ConstantBuffer)
	BindTexture(texture Texture)
	BindMesh(mesh Mesh)
	DrawIndexed(indexCount uint32)
	Destroy()
}

// Fence is a monotonically increasing GPU completion counter.
type Fence interface {
	CompletedValue() uint64
	// Wait blocks until CompletedValue reaches value. There is no timeout.
	Wait(value uint64) error
	Destroy()
}

type Queue interface {
	Submit(list CommandList) error
	// Signal sets the fence to value once all previously submitted work
	// has finished.
	Signal(fence Fence, value uint64) error
}

type SwapChain interface {
	AcquireBackBuffer() (uint32, error)
	Present(syncInterval uint32) error
	BufferCount() uint32
	Extent() (width, height uint32)
}

// RendererBackend creates every GPU object the renderer needs. Creation
// happens at startup; a failure there is fatal for the application.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	// WaitIdle blocks until the device has finished all submitted work.
	WaitIdle() error

	CreateConstantBuffer(slot BindingSlot, size uint64) (ConstantBuffer, error)
	CreateMesh(geometry *metadata.GeometryConfig) (Mesh, error)
	CreateTexture(texture *metadata.Texture) (Texture, error)
	CreatePipeline(config *metadata.PipelineConfig) (Pipeline, error)
	CreateCommandList() (CommandList, error)
	CreateFence(initialValue uint64) (Fence, error)

	Queue() Queue
	SwapChain() SwapChain
}
