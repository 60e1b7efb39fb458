// Package headless is a renderer backend without a GPU. Every command is
// appended to a journal so that frame sequencing can be inspected, and the
// fence only completes when the CPU waits on it, which is the slowest GPU
// the frame loop can meet.
package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

var ErrNotInitialized = errors.New("headless backend not initialized")

// Options tweak the simulated device.
type Options struct {
	BufferCount uint32
	// ImmediateFence makes signaled values complete at once, as if the GPU
	// were always ahead of the CPU.
	ImmediateFence bool
}

type Backend struct {
	opts        Options
	initialized bool
	ids         *core.Identifiers
	journal     *Journal
	queue       *queue
	swapChain   *swapChain
}

func New(opts Options) *Backend {
	if opts.BufferCount == 0 {
		opts.BufferCount = 2
	}
	return &Backend{
		opts:    opts,
		ids:     core.NewIdentifiers(64),
		journal: &Journal{},
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.queue = &queue{backend: b}
	b.swapChain = &swapChain{
		backend: b,
		count:   b.opts.BufferCount,
		width:   appWidth,
		height:  appHeight,
	}
	b.initialized = true
	core.LogInfo("headless backend initialized for '%s' (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	if live := b.ids.Live(); live != 0 {
		core.LogWarn("headless backend shut down with %d live resources", live)
	}
	b.initialized = false
	return nil
}

func (b *Backend) WaitIdle() error {
	b.journal.add(Command{Op: OpWaitIdle})
	return nil
}

// Journal returns everything recorded so far.
func (b *Backend) Journal() *Journal {
	return b.journal
}

// LiveResources counts created resources that have not been destroyed.
func (b *Backend) LiveResources() int {
	return b.ids.Live()
}

func (b *Backend) Queue() renderer.Queue {
	return b.queue
}

func (b *Backend) SwapChain() renderer.SwapChain {
	return b.swapChain
}

func (b *Backend) CreateConstantBuffer(slot renderer.BindingSlot, size uint64) (renderer.ConstantBuffer, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	cb := &constantBuffer{backend: b, slot: slot, data: make([]byte, size)}
	cb.id = b.ids.Acquire(cb)
	return cb, nil
}

func (b *Backend) CreateMesh(geometry *metadata.GeometryConfig) (renderer.Mesh, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if len(geometry.Indices)%3 != 0 {
		return nil, fmt.Errorf("mesh '%s': %d indices is not a triangle list", geometry.Name, len(geometry.Indices))
	}
	m := &mesh{backend: b, name: geometry.Name, indexCount: geometry.IndexCount(), vertexCount: uint32(len(geometry.Vertices))}
	m.id = b.ids.Acquire(m)
	return m, nil
}

func (b *Backend) CreateTexture(texture *metadata.Texture) (renderer.Texture, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if len(texture.Mips) == 0 {
		return nil, fmt.Errorf("texture '%s' has no pixel data", texture.Name)
	}
	t := &tex{backend: b, name: texture.Name, mipLevels: texture.MipLevels()}
	t.id = b.ids.Acquire(t)
	return t, nil
}

func (b *Backend) CreatePipeline(config *metadata.PipelineConfig) (renderer.Pipeline, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	p := &pipeline{backend: b, config: *config}
	p.id = b.ids.Acquire(p)
	return p, nil
}

func (b *Backend) CreateCommandList() (renderer.CommandList, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	l := &commandList{backend: b}
	l.id = b.ids.Acquire(l)
	return l, nil
}

func (b *Backend) CreateFence(initialValue uint64) (renderer.Fence, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	f := &fence{backend: b, completed: initialValue, pending: initialValue}
	f.id = b.ids.Acquire(f)
	return f, nil
}

// release frees id if res still owns it; a second Destroy must not free a
// slot that was handed to another resource since.
func (b *Backend) release(id uint32, res interface{}) {
	owner, ok := b.ids.Owner(id)
	if !ok || owner != res {
		core.LogWarn("headless: %T %d is not live", res, id)
		return
	}
	if err := b.ids.Release(id); err != nil {
		core.LogWarn("headless: %s", err)
		return
	}
	core.LogDebug("headless: released %T %d", owner, id)
}
