package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
)

var (
	ErrSceneFull     = errors.New("scene is full")
	ErrInvalidParent = errors.New("parent must be an earlier node")
	ErrEmptyScene    = errors.New("scene has no nodes")
)

// BindingAllocator creates the constant buffer a node writes its matrix to.
type BindingAllocator func() (*renderer.ConstantBufferBinding, error)

// Scene owns a fixed number of nodes. Nodes are updated in creation order
// and a parent always precedes its children, so one pass is enough.
type Scene struct {
	nodes    []TransformNode
	capacity int
	alloc    BindingAllocator
}

// New creates an empty scene for up to capacity nodes. alloc may be nil,
// in which case nodes have no GPU binding.
func New(capacity int, alloc BindingAllocator) *Scene {
	return &Scene{
		nodes:    make([]TransformNode, 0, capacity),
		capacity: capacity,
		alloc:    alloc,
	}
}

// AddNode appends a node and allocates its constant buffer. parent is the
// index of an existing node or NoParent.
func (s *Scene) AddNode(transform math.Transform, parent int) (int, error) {
	if len(s.nodes) == s.capacity {
		return -1, fmt.Errorf("%w: capacity %d", ErrSceneFull, s.capacity)
	}
	if parent != NoParent && (parent < 0 || parent >= len(s.nodes)) {
		return -1, fmt.Errorf("%w: parent %d for node %d", ErrInvalidParent, parent, len(s.nodes))
	}

	node := TransformNode{
		ID:        uuid.New(),
		Transform: transform,
		parent:    parent,
		world:     math.NewMat4Identity(),
	}
	if s.alloc != nil {
		binding, err := s.alloc()
		if err != nil {
			core.LogError("failed to allocate constant buffer for node %d: %s", len(s.nodes), err)
			return -1, err
		}
		node.binding = binding
	}
	s.nodes = append(s.nodes, node)
	return len(s.nodes) - 1, nil
}

func (s *Scene) Len() int {
	return len(s.nodes)
}

func (s *Scene) Capacity() int {
	return s.capacity
}

// Node returns the node at index. The pointer stays valid for the life of
// the scene because the backing array never grows past its capacity.
func (s *Scene) Node(index int) *TransformNode {
	return &s.nodes[index]
}

// Root is the first node of the scene, or nil if the scene is empty.
func (s *Scene) Root() *TransformNode {
	if len(s.nodes) == 0 {
		return nil
	}
	return &s.nodes[0]
}

// Update recomputes every world matrix and writes world*view*projection
// into each node's buffer.
func (s *Scene) Update(view, projection math.Mat4) {
	viewProjection := view.Mul(projection)
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.HasParent() {
			parentWorld := s.nodes[n.parent].world
			n.update(&parentWorld, viewProjection)
		} else {
			n.update(nil, viewProjection)
		}
	}
}

// Bindings returns the node buffers in draw order.
func (s *Scene) Bindings() []*renderer.ConstantBufferBinding {
	out := make([]*renderer.ConstantBufferBinding, 0, len(s.nodes))
	for i := range s.nodes {
		if b := s.nodes[i].binding; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Destroy releases every node buffer. The GPU must be idle.
func (s *Scene) Destroy() {
	for i := range s.nodes {
		if s.nodes[i].binding != nil {
			s.nodes[i].binding.Destroy()
			s.nodes[i].binding = nil
		}
	}
	s.nodes = s.nodes[:0]
}
