/*
CubeChain opens a window and renders a chain of fifty textured cubes, each
the child of the previous one. Arrow keys move the root, W/A/S/D orbit the
camera and Escape quits.
*/
package main

import (
	"flag"
	"os"

	"github.com/spaghettifunk/cubechain/engine"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration")
	headless := flag.Bool("headless", false, "render without a window for renderer.headless_frames frames")
	flag.Parse()

	os.Exit(run(*configPath, *headless))
}

func run(configPath string, headless bool) int {
	config, err := engine.LoadApplicationConfig(configPath)
	if err != nil {
		core.LogError("failed to load configuration: %s", err)
		return 1
	}
	if headless {
		config.Renderer.Backend = "headless"
	}

	game := testbed.NewCubeChain(config)
	e, err := engine.New(game.Game)
	if err != nil {
		core.LogError("failed to create engine: %s", err)
		return 1
	}

	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize engine: %s", err)
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown after failed start: %s", err)
		}
		return 1
	}

	code := 0
	if err := e.Run(); err != nil {
		core.LogError("frame loop stopped: %s", err)
		code = 1
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
		code = 1
	}
	return code
}
