package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadApplicationConfigMissingFileGivesDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), config)
}

func TestLoadApplicationConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
name = "Chain Test"

[window]
width = 640

[renderer]
backend = "headless"
headless_frames = 3

[scene]
nodes = 4
`)
	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Chain Test", config.Name)
	assert.Equal(t, uint32(640), config.Window.StartWidth)
	assert.Equal(t, uint32(720), config.Window.StartHeight, "untouched keys keep their default")
	assert.Equal(t, "headless", config.Renderer.Backend)
	assert.Equal(t, uint64(3), config.Renderer.HeadlessFrames)
	assert.Equal(t, 4, config.Scene.Nodes)
	assert.Equal(t, float32(0.9), config.Scene.ChildScale)
	assert.Equal(t, []string{"texture", "reimu"}, config.Assets.Textures)
}

func TestLoadApplicationConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "[window]\ndepth = 3\n",
		"bad backend":     "[renderer]\nbackend = \"metal\"\n",
		"no nodes":        "[scene]\nnodes = 0\n",
		"texture index":   "[assets]\nbound_texture = 2\n",
		"log level":       "[log]\nlevel = \"loud\"\n",
		"inverted depths": "[renderer]\nnear = 10.0\nfar = 1.0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadApplicationConfig(writeConfig(t, content))
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestApplicationConfigDerivedConfigs(t *testing.T) {
	config := DefaultApplicationConfig()

	rc := config.RendererConfig()
	assert.Equal(t, uint32(1280), rc.Width)
	assert.Equal(t, [4]float32{0.1, 0.25, 0.5, 0.0}, rc.ClearColor)
	assert.Equal(t, 1, rc.BoundTexture)

	cc := config.ChainConfig()
	assert.Equal(t, 50, cc.Count)
	assert.InDelta(t, 0.5235988, cc.ChildRotation.Z, 1e-6)
	assert.Equal(t, float32(-8), cc.ChildPosition.Z)
}
