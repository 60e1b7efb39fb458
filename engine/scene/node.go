package scene

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
)

// NoParent marks a root node.
const NoParent = -1

// TransformNode is one object of the scene. Its parent is an index into the
// owning Scene, never a pointer, so the scene alone decides node lifetime.
type TransformNode struct {
	ID        uuid.UUID
	Transform math.Transform

	parent  int
	world   math.Mat4
	binding *renderer.ConstantBufferBinding
}

// Parent returns the parent index, or NoParent.
func (n *TransformNode) Parent() int {
	return n.parent
}

func (n *TransformNode) HasParent() bool {
	return n.parent != NoParent
}

// World returns the world matrix computed by the last update.
func (n *TransformNode) World() math.Mat4 {
	return n.world
}

func (n *TransformNode) Binding() *renderer.ConstantBufferBinding {
	return n.binding
}

// update composes the local matrix with the parent's world matrix of the
// current frame and writes world*view*projection to the node's buffer.
func (n *TransformNode) update(parentWorld *math.Mat4, viewProjection math.Mat4) {
	n.world = n.Transform.Local()
	if parentWorld != nil {
		n.world = n.world.Mul(*parentWorld)
	}
	if n.binding != nil {
		n.binding.WriteMatrix(n.world.Mul(viewProjection))
	}
}
