package renderer

import (
	"fmt"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	Headless
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case Headless:
		return "headless"
	}
	return "unknown"
}

// ParseRendererType maps a config string to a backend type.
func ParseRendererType(name string) (RendererType, error) {
	switch name {
	case "vulkan", "":
		return Vulkan, nil
	case "headless":
		return Headless, nil
	}
	return 0, fmt.Errorf("%w: renderer backend '%s'", core.ErrInvalidConfig, name)
}

// Config is the fixed rendering setup chosen at startup.
type Config struct {
	Width, Height uint32
	// FovY is the vertical field of view in degrees.
	FovY          float32
	Near, Far     float32
	ClearColor    [4]float32
	ClearDepth    float32
	MaterialColor [4]float32
	// BoundTexture selects which of the loaded textures the draws sample.
	BoundTexture   int
	SyncInterval   uint32
	CubeHalfExtent float32
}

// Renderer owns the static GPU resources and the frame controller.
type Renderer struct {
	backend RendererBackend
	config  Config

	pipeline   Pipeline
	mesh       Mesh
	textures   []Texture
	material   *ConstantBufferBinding
	frames     *FrameController
	projection math.Mat4
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

// Initialize brings up the backend and creates everything that stays
// alive for the whole run. Any error here is a startup failure.
func (r *Renderer) Initialize(appName string, config Config, shaders []metadata.ShaderModule, textures []*metadata.Texture) error {
	r.config = config
	if err := r.backend.Initialize(appName, config.Width, config.Height); err != nil {
		core.LogError("failed to initialize renderer backend: %s", err)
		return err
	}

	pipeline, err := r.backend.CreatePipeline(&metadata.PipelineConfig{
		Name:         "cube",
		Stages:       shaders,
		CullMode:     metadata.CullModeBack,
		DepthCompare: metadata.CompareOpLess,
		DepthWrite:   true,
		VertexStride: 32,
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	r.pipeline = pipeline

	mesh, err := r.backend.CreateMesh(NewCubeGeometry(config.CubeHalfExtent))
	if err != nil {
		return fmt.Errorf("create cube mesh: %w", err)
	}
	r.mesh = mesh

	for _, t := range textures {
		tex, err := r.backend.CreateTexture(t)
		if err != nil {
			return fmt.Errorf("create texture '%s': %w", t.Name, err)
		}
		r.textures = append(r.textures, tex)
	}
	if config.BoundTexture < 0 || config.BoundTexture >= len(r.textures) {
		return fmt.Errorf("%w: bound texture %d, %d loaded", core.ErrInvalidConfig, config.BoundTexture, len(r.textures))
	}

	material, err := NewConstantBufferBinding(r.backend, SlotMaterial, Vec4PayloadSize)
	if err != nil {
		return fmt.Errorf("create material buffer: %w", err)
	}
	c := config.MaterialColor
	material.WriteVec4(math.NewVec4(c[0], c[1], c[2], c[3]))
	r.material = material

	width, height := r.backend.SwapChain().Extent()
	frames, err := NewFrameController(r.backend, FrameResources{
		Pipeline: r.pipeline,
		Mesh:     r.mesh,
		Material: r.material.Buffer(),
		Texture:  r.textures[config.BoundTexture],
		Viewport: Viewport{
			Width:    float32(width),
			Height:   float32(height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Clear:        ClearValues{Color: config.ClearColor, Depth: config.ClearDepth},
		SyncInterval: config.SyncInterval,
	})
	if err != nil {
		return fmt.Errorf("create frame controller: %w", err)
	}
	r.frames = frames

	r.projection = math.NewMat4PerspectiveLH(
		math.DegToRad(config.FovY),
		float32(width)/float32(height),
		config.Near,
		config.Far,
	)
	core.LogInfo("renderer initialized: %dx%d, %d textures, %d back buffers", width, height, len(r.textures), r.backend.SwapChain().BufferCount())
	return nil
}

// NewTransformBinding allocates the per-object world-view-projection
// buffer.
func (r *Renderer) NewTransformBinding() (*ConstantBufferBinding, error) {
	return NewConstantBufferBinding(r.backend, SlotTransform, MatrixPayloadSize)
}

func (r *Renderer) Projection() math.Mat4 {
	return r.projection
}

func (r *Renderer) Frames() *FrameController {
	return r.frames
}

// DrawFrame renders one frame with one cube per binding. It returns once
// the GPU has finished the frame.
func (r *Renderer) DrawFrame(bindings []*ConstantBufferBinding) error {
	buffers := make([]ConstantBuffer, len(bindings))
	for i, b := range bindings {
		buffers[i] = b.Buffer()
	}
	if err := r.frames.RenderFrame(buffers); err != nil {
		core.LogError("frame %d failed in state %s: %s", r.frames.FenceValue()+1, r.frames.State(), err)
		return err
	}
	return nil
}

// WaitIdle blocks until the device has no work in flight.
func (r *Renderer) WaitIdle() error {
	return r.backend.WaitIdle()
}

// Shutdown releases every resource the renderer created, then the backend
// itself. The caller waits for the device with WaitIdle first.
func (r *Renderer) Shutdown() error {
	if r.frames != nil {
		r.frames.Destroy()
		r.frames = nil
	}
	if r.material != nil {
		r.material.Destroy()
		r.material = nil
	}
	for _, t := range r.textures {
		t.Destroy()
	}
	r.textures = nil
	if r.mesh != nil {
		r.mesh.Destroy()
		r.mesh = nil
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
	return r.backend.Shutdown()
}
