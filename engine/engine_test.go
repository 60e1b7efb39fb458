package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer/headless"
	"github.com/spaghettifunk/cubechain/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headlessConfig(t *testing.T, frames uint64) *ApplicationConfig {
	t.Helper()
	config := DefaultApplicationConfig()
	config.Renderer.Backend = "headless"
	config.Renderer.HeadlessFrames = frames
	config.Assets.Dir = filepath.Join(t.TempDir(), "missing")
	config.Assets.Watch = false
	config.Log.Level = "error"
	return config
}

func TestHeadlessRun(t *testing.T) {
	var updates, resizes int
	var shutdown bool
	g := &Game{
		ApplicationConfig: headlessConfig(t, 5),
		FnUpdate: func(s *scene.Scene, input core.InputState, deltaTime float64) error {
			updates++
			return nil
		},
		FnOnResize: func(w, h uint32) error {
			resizes++
			assert.Equal(t, uint32(1280), w)
			assert.Equal(t, uint32(720), h)
			return nil
		},
		FnShutdown: func() error {
			shutdown = true
			return nil
		},
	}

	e, err := New(g)
	require.NoError(t, err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, 50, e.Scene().Len())

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(5), e.Frames())
	assert.Equal(t, 5, updates)
	assert.Equal(t, 1, resizes)

	backend := e.Backend().(*headless.Backend)
	journal := backend.Journal()
	assert.Len(t, journal.Filter(headless.OpDrawIndexed), 5*50)
	assert.Len(t, journal.Filter(headless.OpPresent), 5)
	assert.Len(t, journal.Filter(headless.OpSignal), 5)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
	assert.True(t, shutdown)
	assert.Zero(t, backend.LiveResources())
	assert.Len(t, journal.Filter(headless.OpWaitIdle), 1, "device is waited on once at shutdown")

	// a second shutdown is a no-op
	assert.NoError(t, e.Shutdown())
}

func TestRunStopsOnUpdateError(t *testing.T) {
	boom := errors.New("boom")
	g := &Game{
		ApplicationConfig: headlessConfig(t, 10),
		FnUpdate: func(s *scene.Scene, input core.InputState, deltaTime float64) error {
			return boom
		},
	}
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Run(), boom)
	assert.Zero(t, e.Frames())
	require.NoError(t, e.Shutdown())
}

func TestRequestQuitStopsLoop(t *testing.T) {
	g := &Game{ApplicationConfig: headlessConfig(t, 100)}
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	e.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
	require.NoError(t, e.Run())
	assert.Zero(t, e.Frames())
	require.NoError(t, e.Shutdown())
}

func TestEscapeRequestsQuit(t *testing.T) {
	g := &Game{ApplicationConfig: headlessConfig(t, 100)}
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	require.NoError(t, e.keyboard.ProcessKey(core.KEY_ESCAPE, true))
	assert.False(t, e.isRunning.Load())
	require.NoError(t, e.Shutdown())
}

func TestStageChecks(t *testing.T) {
	e, err := New(&Game{ApplicationConfig: headlessConfig(t, 1)})
	require.NoError(t, err)
	assert.ErrorIs(t, e.Run(), ErrWrongStage)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Initialize(), ErrWrongStage)
	require.NoError(t, e.Shutdown())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := headlessConfig(t, 1)
	config.Scene.Nodes = 0
	_, err := New(&Game{ApplicationConfig: config})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
