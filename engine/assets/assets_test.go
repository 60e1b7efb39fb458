package assets

import (
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/cubechain/engine/assets/loaders"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ShaderDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, TextureDir), 0o755))

	spv := make([]byte, 0, 20)
	for _, w := range []uint32{loaders.SpirvMagic, 0x00010000, 0, 1, 0} {
		spv = binary.LittleEndian.AppendUint32(spv, w)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ShaderDir, "cube.vert.spv"), spv, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ShaderDir, "cube.frag.spv"), spv, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ShaderDir, "cube.vert"), []byte("#version 450"), 0o644))

	f, err := os.Create(filepath.Join(root, TextureDir, "reimu.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())
	return root
}

func newManager(t *testing.T, root string) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root))
	t.Cleanup(func() { _ = am.Close() })
	return am
}

func TestAssetManagerIndexesKnownTypes(t *testing.T) {
	am := newManager(t, writeFixtures(t))

	assert.Equal(t, []string{
		"shaders/cube.frag.spv",
		"shaders/cube.vert.spv",
		"textures/reimu.png",
	}, am.Paths())

	info, ok := am.Lookup("textures/reimu.png")
	require.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeTexture, info.Type)
	assert.True(t, info.LastLoaded.IsZero())
}

func TestAssetManagerLoads(t *testing.T) {
	am := newManager(t, writeFixtures(t))

	tex, err := am.LoadTexture("reimu")
	require.NoError(t, err)
	assert.Equal(t, "reimu", tex.Name)
	assert.Equal(t, metadata.TextureFormatRGBA8SRGB, tex.Format)
	assert.Equal(t, uint32(3), tex.MipLevels())

	info, _ := am.Lookup("textures/reimu.png")
	assert.False(t, info.LastLoaded.IsZero())

	vert, err := am.LoadShader("cube", metadata.ShaderStageVertex)
	require.NoError(t, err)
	assert.Equal(t, metadata.ShaderStageVertex, vert.Stage)

	frag, err := am.LoadShader("cube", metadata.ShaderStageFragment)
	require.NoError(t, err)
	assert.Equal(t, metadata.ShaderStageFragment, frag.Stage)

	_, err = am.LoadTexture("texture")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = am.LoadAsset("textures/reimu.png", metadata.ResourceTypeShader, nil)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestAssetManagerWatchesEdits(t *testing.T) {
	root := writeFixtures(t)
	am := newManager(t, root)

	src, err := os.ReadFile(filepath.Join(root, TextureDir, "reimu.png"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, TextureDir, "texture.png"), src, 0o644))

	select {
	case info := <-am.Changes():
		assert.Equal(t, "textures/texture.png", info.Path)
		assert.Equal(t, metadata.ResourceTypeTexture, info.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	_, err = am.LoadTexture("texture")
	assert.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, TextureDir, "texture.png")))
	assert.Eventually(t, func() bool {
		_, ok := am.Lookup("textures/texture.png")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAssetManagerClose(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(writeFixtures(t)))
	require.NoError(t, am.Close())
	assert.ErrorIs(t, am.Close(), ErrClosed)

	idle, err := NewAssetManager()
	require.NoError(t, err)
	assert.NoError(t, idle.Close())
}
