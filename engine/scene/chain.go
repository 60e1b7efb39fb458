package scene

import (
	"github.com/spaghettifunk/cubechain/engine/math"
)

// ChainConfig describes a chain where every node after the first is the
// child of the one created before it.
type ChainConfig struct {
	Count int
	// Child transform, relative to the parent.
	ChildScale    float32
	ChildRotation math.Vec3
	ChildPosition math.Vec3
}

// DefaultChainConfig is fifty cubes, each 0.9 times its parent, turned 30
// degrees about Z and pushed 8 units back.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Count:         50,
		ChildScale:    0.9,
		ChildRotation: math.NewVec3(0, 0, math.DegToRad(30)),
		ChildPosition: math.NewVec3(0, 0, -8),
	}
}

// NewChain builds the chain described by config. Node 0 is a unit root at
// the origin.
func NewChain(config ChainConfig, alloc BindingAllocator) (*Scene, error) {
	s := New(config.Count, alloc)
	for i := 0; i < config.Count; i++ {
		t := math.NewTransform()
		parent := NoParent
		if i > 0 {
			t.Scale = math.NewVec3(config.ChildScale, config.ChildScale, config.ChildScale)
			t.Rotation = config.ChildRotation
			t.Position = config.ChildPosition
			parent = i - 1
		}
		if _, err := s.AddNode(t, parent); err != nil {
			s.Destroy()
			return nil, err
		}
	}
	return s, nil
}
