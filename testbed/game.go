package testbed

import (
	"github.com/spaghettifunk/cubechain/engine"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/scene"
)

// CubeChain steers the root of the cube chain with the arrow keys. The
// camera orbit is handled by the engine.
type CubeChain struct {
	*engine.Game

	step   float32
	width  uint32
	height uint32
	frames uint64
}

type gameState struct {
	DeltaTime float64
	Frame     uint64
}

func NewCubeChain(config *engine.ApplicationConfig) *CubeChain {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	g := &CubeChain{
		step: config.Input.RootStep,
	}
	g.Game = &engine.Game{
		ApplicationConfig: config,
		State:             &gameState{},
		FnInitialize:      g.Initialize,
		FnUpdate:          g.Update,
		FnOnResize:        g.OnResize,
		FnShutdown:        g.Shutdown,
	}
	return g
}

func (g *CubeChain) Initialize(s *scene.Scene) error {
	root := s.Root()
	if root == nil {
		return scene.ErrEmptyScene
	}
	core.LogDebug("cube chain ready: %d nodes, root at %v", s.Len(), root.Transform.Position)
	return nil
}

// Update moves the root one step per frame while an arrow key is held. Up
// wins over Down and Right wins over Left when both are held.
func (g *CubeChain) Update(s *scene.Scene, input core.InputState, deltaTime float64) error {
	g.frames++
	if state, ok := g.State.(*gameState); ok {
		state.DeltaTime = deltaTime
		state.Frame = g.frames
	}

	root := s.Root()
	if root == nil {
		return scene.ErrEmptyScene
	}
	root.Transform.Translate(RootDelta(input, g.step))
	return nil
}

// RootDelta is the root translation for one frame of input.
func RootDelta(input core.InputState, step float32) math.Vec3 {
	delta := math.NewVec3Zero()
	if input.IsHeld(core.KEY_UP) {
		delta.Y = step
	} else if input.IsHeld(core.KEY_DOWN) {
		delta.Y = -step
	}
	if input.IsHeld(core.KEY_RIGHT) {
		delta.X = step
	} else if input.IsHeld(core.KEY_LEFT) {
		delta.X = -step
	}
	return delta
}

func (g *CubeChain) OnResize(width, height uint32) error {
	g.width = width
	g.height = height
	return nil
}

func (g *CubeChain) Shutdown() error {
	core.LogDebug("cube chain ran for %d frames", g.frames)
	return nil
}
