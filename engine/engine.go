package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/cubechain/engine/assets"
	"github.com/spaghettifunk/cubechain/engine/assets/loaders"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/platform"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/components"
	"github.com/spaghettifunk/cubechain/engine/renderer/headless"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
	"github.com/spaghettifunk/cubechain/engine/renderer/vulkan"
	"github.com/spaghettifunk/cubechain/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting-down"
	}
	return "unknown"
}

var ErrWrongStage = errors.New("engine is in the wrong stage")

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	backendType  renderer.RendererType

	// isRunning is cleared by quit requests, which may come from a signal.
	isRunning   atomic.Bool
	isSuspended bool

	platform     *platform.Platform
	assetManager *assets.AssetManager
	bus          *core.EventBus
	keyboard     *core.KeyboardRecorder

	backend  renderer.RendererBackend
	vulkan   *vulkan.VulkanRenderer
	renderer *renderer.Renderer
	scene    *scene.Scene
	camera   *components.Camera

	width  uint32
	height uint32

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	frames   uint64

	signals chan os.Signal
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		core.LogError("invalid application config: %s", err)
		return nil, err
	}
	backendType, err := renderer.ParseRendererType(config.Renderer.Backend)
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		backendType:  backendType,
		assetManager: am,
		bus:          core.NewEventBus(),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        config.Window.StartWidth,
		height:       config.Window.StartHeight,
		signals:      make(chan os.Signal, 1),
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Frames is the number of frames drawn so far.
func (e *Engine) Frames() uint64 {
	return e.frames
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) Camera() *components.Camera {
	return e.camera
}

// Backend exposes the renderer backend, mostly for inspecting a headless run.
func (e *Engine) Backend() renderer.RendererBackend {
	return e.backend
}

// RequestQuit stops the loop before the next frame. Safe from any goroutine.
func (e *Engine) RequestQuit() {
	e.isRunning.Store(false)
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("%w: initialize in stage %s", ErrWrongStage, e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	config := e.config

	if err := core.SetLogLevel(config.Log.Level); err != nil {
		return err
	}

	// register some events
	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.keyboard = core.NewKeyboardRecorder(e.bus)

	switch e.backendType {
	case renderer.Headless:
		e.backend = headless.New(headless.Options{BufferCount: config.Renderer.BackBuffers})
	default:
		p, err := platform.New(config.Input.KeyQueueSize)
		if err != nil {
			return err
		}
		if err := p.Startup(config.Name,
			config.Window.StartPosX,
			config.Window.StartPosY,
			config.Window.StartWidth,
			config.Window.StartHeight); err != nil {
			return err
		}
		e.platform = p
		e.vulkan = vulkan.New(p, vulkan.Options{
			Debug:        config.Renderer.Debug,
			SyncInterval: config.Renderer.SyncInterval,
		})
		e.backend = e.vulkan
	}

	shaders, textures, err := e.loadAssets()
	if err != nil {
		return err
	}

	e.renderer = renderer.New(e.backend)
	if err := e.renderer.Initialize(config.Name, config.RendererConfig(), shaders, textures); err != nil {
		core.LogError("failed to initialize renderer: %s", err)
		return err
	}

	s, err := scene.NewChain(config.ChainConfig(), e.renderer.NewTransformBinding)
	if err != nil {
		core.LogError("failed to build the scene: %s", err)
		return err
	}
	e.scene = s

	c := config.Camera
	e.camera = components.NewCamera(
		math.NewVec3(c.Eye[0], c.Eye[1], c.Eye[2]),
		math.NewVec3(c.Target[0], c.Target[1], c.Target[2]),
		math.NewVec3(c.Up[0], c.Up[1], c.Up[2]),
		c.Radius,
		c.OrbitStep,
	)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.scene); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	signal.Notify(e.signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		// capture sigterm and other system call here
		if _, ok := <-e.signals; ok {
			core.LogInfo("signal received, shutting down")
			e.RequestQuit()
		}
	}()

	e.isRunning.Store(true)
	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with the %s backend, %d nodes", e.backendType, e.scene.Len())
	return nil
}

// loadAssets reads the shader pair and every configured texture. A headless
// run does not need real assets and falls back to placeholders.
func (e *Engine) loadAssets() ([]metadata.ShaderModule, []*metadata.Texture, error) {
	config := e.config.Assets
	headlessRun := e.backendType == renderer.Headless

	if err := e.assetManager.Initialize(config.Dir); err != nil {
		if !headlessRun {
			core.LogError("failed to open asset directory '%s': %s", config.Dir, err)
			return nil, nil, err
		}
		core.LogWarn("asset directory '%s' unavailable (%s), using placeholders", config.Dir, err)
	}

	shaders := make([]metadata.ShaderModule, 0, 2)
	for _, stage := range []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageFragment} {
		module, err := e.assetManager.LoadShader(config.Shader, stage)
		if err != nil {
			if !headlessRun {
				core.LogError("failed to load %s shader '%s': %s", stage, config.Shader, err)
				return nil, nil, err
			}
			module = &metadata.ShaderModule{Name: config.Shader, Stage: stage, EntryPoint: "main"}
		}
		shaders = append(shaders, *module)
	}

	textures, err := e.assetManager.LoadTextures(config.Textures)
	if err != nil {
		if !headlessRun {
			core.LogError("failed to load textures: %s", err)
			return nil, nil, err
		}
		core.LogWarn("textures unavailable (%s), using placeholders", err)
		textures = make([]*metadata.Texture, 0, len(config.Textures))
		for _, name := range config.Textures {
			tex, err := placeholderTexture(name)
			if err != nil {
				return nil, nil, err
			}
			textures = append(textures, tex)
		}
	}
	return shaders, textures, nil
}

func placeholderTexture(name string) (*metadata.Texture, error) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	loader := &loaders.TextureLoader{GenerateMips: true, SRGB: true}
	return loader.FromImage(name, img)
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: run in stage %s", ErrWrongStage, e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for e.isRunning.Load() {
		if !e.pumpMessages() {
			break
		}

		e.drainAssetChanges()

		if e.isSuspended {
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		input := e.keyboard.Snapshot()
		if !e.isRunning.Load() {
			// Escape was pressed in this batch of events.
			break
		}

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e.scene, input, delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				runErr = err
				break
			}
		}

		e.camera.HandleInput(input)
		e.scene.Update(e.camera.GetView(), e.renderer.Projection())

		if err := e.renderer.DrawFrame(e.scene.Bindings()); err != nil {
			runErr = err
			break
		}
		e.frames++

		e.clock.Update()
		frameElapsedTime := e.clock.Elapsed() - currentTime
		if e.metrics.Update(frameElapsedTime) {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("FPS: %.0f, frame time: %.3fms, frames: %d", fps, frameTime, e.frames)
		}

		// Update last time
		e.lastTime = currentTime
	}
	e.isRunning.Store(false)
	return runErr
}

// pumpMessages moves platform input into the keyboard recorder. It returns
// false once the loop should end.
func (e *Engine) pumpMessages() bool {
	if e.platform == nil {
		return e.frames < e.config.Renderer.HeadlessFrames
	}
	if !e.platform.PumpMessages() {
		core.LogInfo("window closed, shutting down")
		return false
	}
	e.platform.KeyEvents().Drain(func(ev core.KeyEvent) {
		if err := e.keyboard.ProcessKey(ev.KeyCode, ev.Pressed); err != nil {
			core.LogWarn("dropped key event: %s", err)
		}
	})

	if w, h := e.platform.FramebufferSize(); w != e.width || h != e.height {
		ctx := core.EventContext{}
		ctx.Data.U32[0] = w
		ctx.Data.U32[1] = h
		e.bus.Fire(core.EVENT_CODE_RESIZED, e.platform, ctx)
	}
	return true
}

func (e *Engine) drainAssetChanges() {
	if !e.config.Assets.Watch {
		return
	}
	for {
		select {
		case info := <-e.assetManager.Changes():
			core.LogDebug("asset %s modified at %s", info.Path, info.LastLoaded.Format("15:04:05"))
		default:
			return
		}
	}
}

// Shutdown waits for the GPU, then releases node buffers, static resources,
// the backend and the window, in that order.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	signal.Stop(e.signals)
	close(e.signals)

	var errs []error
	if e.renderer != nil {
		if err := e.renderer.WaitIdle(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.scene != nil {
		e.scene.Destroy()
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	} else if e.backend != nil {
		errs = append(errs, e.backend.Shutdown())
	}
	if err := e.assetManager.Close(); err != nil && !errors.Is(err, assets.ErrClosed) {
		errs = append(errs, err)
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	e.bus.Shutdown()
	core.LogInfo("engine shut down after %d frames", e.frames)
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.RequestQuit()
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if core.KeyCode(data.Data.U16[0]) == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width := data.Data.U32[0]
	height := data.Data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.vulkan != nil {
		e.vulkan.Resized(width, height)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
