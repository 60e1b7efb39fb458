package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/scene"
)

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"height"`
}

type RendererConfig struct {
	// Backend is "vulkan" or "headless".
	Backend      string `toml:"backend"`
	Debug        bool   `toml:"debug"`
	SyncInterval uint32 `toml:"sync_interval"`
	BackBuffers  uint32 `toml:"back_buffers"`
	// HeadlessFrames is how many frames a headless run draws before quitting.
	HeadlessFrames uint64     `toml:"headless_frames"`
	ClearColor     [4]float32 `toml:"clear_color"`
	ClearDepth     float32    `toml:"clear_depth"`
	// FovY is in degrees.
	FovY float32 `toml:"fov_y"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

type SceneConfig struct {
	Nodes          int        `toml:"nodes"`
	ChildScale     float32    `toml:"child_scale"`
	ChildRotationZ float32    `toml:"child_rotation_z"`
	ChildOffset    [3]float32 `toml:"child_offset"`
	CubeHalfExtent float32    `toml:"cube_half_extent"`
	MaterialColor  [4]float32 `toml:"material_color"`
}

type CameraConfig struct {
	Eye    [3]float32 `toml:"eye"`
	Target [3]float32 `toml:"target"`
	Up     [3]float32 `toml:"up"`
	Radius float32    `toml:"radius"`
	// OrbitStep is the angle added per frame while an orbit key is held, in
	// degrees.
	OrbitStep float32 `toml:"orbit_step"`
}

type InputConfig struct {
	KeyQueueSize int `toml:"key_queue_size"`
	// RootStep is how far the root node moves per frame while an arrow key
	// is held.
	RootStep float32 `toml:"root_step"`
}

type AssetsConfig struct {
	Dir    string `toml:"dir"`
	Shader string `toml:"shader"`
	// Textures are loaded in order; BoundTexture indexes this list.
	Textures     []string `toml:"textures"`
	BoundTexture int      `toml:"bound_texture"`
	// Watch logs edits to the asset directory while running.
	Watch bool `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string         `toml:"name"`
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Scene    SceneConfig    `toml:"scene"`
	Camera   CameraConfig   `toml:"camera"`
	Input    InputConfig    `toml:"input"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
}

// DefaultApplicationConfig is a 1280x720 window showing the fifty cube
// chain with the second texture bound.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name: "CubeChain",
		Window: WindowConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
		},
		Renderer: RendererConfig{
			Backend:        "vulkan",
			SyncInterval:   1,
			BackBuffers:    2,
			HeadlessFrames: 120,
			ClearColor:     [4]float32{0.1, 0.25, 0.5, 0.0},
			ClearDepth:     1.0,
			FovY:           45,
			Near:           0.1,
			Far:            1000,
		},
		Scene: SceneConfig{
			Nodes:          50,
			ChildScale:     0.9,
			ChildRotationZ: 30,
			ChildOffset:    [3]float32{0, 0, -8},
			CubeHalfExtent: 5,
			MaterialColor:  [4]float32{1, 1, 1, 1},
		},
		Camera: CameraConfig{
			Eye:       [3]float32{0, 0, -100},
			Target:    [3]float32{0, 0, 0},
			Up:        [3]float32{0, 1, 0},
			Radius:    100,
			OrbitStep: 10,
		},
		Input: InputConfig{
			KeyQueueSize: 64,
			RootStep:     1,
		},
		Assets: AssetsConfig{
			Dir:          "assets",
			Shader:       "cube",
			Textures:     []string{"texture", "reimu"},
			BoundTexture: 1,
			Watch:        true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadApplicationConfig reads a TOML file over the defaults. A missing file
// yields the defaults; keys the file leaves out keep their default value.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("config file '%s' not found, using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%w: %s:%d:%d: %s", core.ErrInvalidConfig, path, row, col, decodeErr.Error())
		}
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	if c.Window.StartWidth == 0 || c.Window.StartHeight == 0 {
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidConfig, c.Window.StartWidth, c.Window.StartHeight)
	}
	if _, err := renderer.ParseRendererType(c.Renderer.Backend); err != nil {
		return err
	}
	if c.Renderer.Near <= 0 || c.Renderer.Far <= c.Renderer.Near {
		return fmt.Errorf("%w: depth range %g..%g", core.ErrInvalidConfig, c.Renderer.Near, c.Renderer.Far)
	}
	if c.Scene.Nodes <= 0 {
		return fmt.Errorf("%w: scene needs at least one node, got %d", core.ErrInvalidConfig, c.Scene.Nodes)
	}
	if c.Assets.BoundTexture < 0 || c.Assets.BoundTexture >= len(c.Assets.Textures) {
		return fmt.Errorf("%w: bound texture %d of %d", core.ErrInvalidConfig, c.Assets.BoundTexture, len(c.Assets.Textures))
	}
	if c.Input.KeyQueueSize <= 0 {
		return fmt.Errorf("%w: key queue size %d", core.ErrInvalidConfig, c.Input.KeyQueueSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "":
	default:
		return fmt.Errorf("%w: log level '%s'", core.ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// RendererConfig is the renderer's view of the configuration.
func (c *ApplicationConfig) RendererConfig() renderer.Config {
	return renderer.Config{
		Width:          c.Window.StartWidth,
		Height:         c.Window.StartHeight,
		FovY:           c.Renderer.FovY,
		Near:           c.Renderer.Near,
		Far:            c.Renderer.Far,
		ClearColor:     c.Renderer.ClearColor,
		ClearDepth:     c.Renderer.ClearDepth,
		MaterialColor:  c.Scene.MaterialColor,
		BoundTexture:   c.Assets.BoundTexture,
		SyncInterval:   c.Renderer.SyncInterval,
		CubeHalfExtent: c.Scene.CubeHalfExtent,
	}
}

func (c *ApplicationConfig) ChainConfig() scene.ChainConfig {
	o := c.Scene.ChildOffset
	return scene.ChainConfig{
		Count:         c.Scene.Nodes,
		ChildScale:    c.Scene.ChildScale,
		ChildRotation: math.NewVec3(0, 0, math.DegToRad(c.Scene.ChildRotationZ)),
		ChildPosition: math.NewVec3(o[0], o[1], o[2]),
	}
}
