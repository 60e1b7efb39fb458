package headless

import (
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

type constantBuffer struct {
	backend *Backend
	id      uint32
	slot    renderer.BindingSlot
	data    []byte
}

func (c *constantBuffer) Mapped() []byte {
	return c.data
}

func (c *constantBuffer) Size() uint64 {
	return uint64(len(c.data))
}

func (c *constantBuffer) Destroy() {
	c.backend.release(c.id, c)
	c.data = nil
}

type mesh struct {
	backend     *Backend
	id          uint32
	name        string
	indexCount  uint32
	vertexCount uint32
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) Destroy() {
	m.backend.release(m.id, m)
}

type tex struct {
	backend   *Backend
	id        uint32
	name      string
	mipLevels uint32
}

func (t *tex) Name() string {
	return t.name
}

func (t *tex) Destroy() {
	t.backend.release(t.id, t)
}

type pipeline struct {
	backend *Backend
	id      uint32
	config  metadata.PipelineConfig
}

func (p *pipeline) Destroy() {
	p.backend.release(p.id, p)
}

// ID returns the headless resource id of any object created by a Backend,
// or false for foreign objects.
func ID(resource interface{}) (uint32, bool) {
	switch r := resource.(type) {
	case *constantBuffer:
		return r.id, true
	case *mesh:
		return r.id, true
	case *tex:
		return r.id, true
	case *pipeline:
		return r.id, true
	case *commandList:
		return r.id, true
	case *fence:
		return r.id, true
	}
	return 0, false
}
