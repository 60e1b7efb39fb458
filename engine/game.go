package engine

import (
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/scene"
)

// Game is what an application plugs into the engine. Every hook is optional.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize runs once the scene exists and before the first frame.
type Initialize func(s *scene.Scene) error

// Update runs once per frame before the scene is evaluated.
type Update func(s *scene.Scene, input core.InputState, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
