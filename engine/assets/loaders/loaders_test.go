package loaders

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirvWords(words ...uint32) []byte {
	b := make([]byte, 0, 4*len(words))
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestMipCount(t *testing.T) {
	assert.Equal(t, 1, MipCount(1, 1))
	assert.Equal(t, 4, MipCount(8, 4))
	assert.Equal(t, 10, MipCount(512, 3))
	assert.Equal(t, 9, MipCount(300, 200))
}

func TestTextureLoaderBuildsMipChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reimu.png")
	writePNG(t, path, 8, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	tl := &TextureLoader{GenerateMips: true, SRGB: true}
	res, err := tl.Load(path, metadata.ResourceTypeTexture, nil)
	require.NoError(t, err)

	tex, ok := res.Data.(*metadata.Texture)
	require.True(t, ok)
	assert.Equal(t, "reimu", tex.Name)
	assert.Equal(t, "reimu", res.Name)
	assert.Equal(t, metadata.TextureFormatRGBA8SRGB, tex.Format)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	require.Equal(t, uint32(4), tex.MipLevels())

	dims := [][2]uint32{{8, 4}, {4, 2}, {2, 1}, {1, 1}}
	for i, m := range tex.Mips {
		assert.Equal(t, dims[i][0], m.Width, "mip %d", i)
		assert.Equal(t, dims[i][1], m.Height, "mip %d", i)
		assert.Len(t, m.Pixels, int(m.Width*m.Height*metadata.TextureChannelCount))
	}
	assert.Equal(t, []uint8{200, 100, 50, 255}, tex.Mips[0].Pixels[:4])
	last := tex.Mips[3].Pixels
	assert.InDelta(t, 200, last[0], 1)
	assert.InDelta(t, 100, last[1], 1)
	assert.InDelta(t, 50, last[2], 1)
	assert.InDelta(t, 255, last[3], 1)
	assert.Equal(t, tex.ByteSize(), res.DataSize)
}

func TestTextureLoaderSingleLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texture.png")
	writePNG(t, path, 16, 16, color.NRGBA{A: 255})

	tl := &TextureLoader{}
	res, err := tl.Load(path, metadata.ResourceTypeTexture, "custom")
	require.NoError(t, err)
	tex := res.Data.(*metadata.Texture)
	assert.Equal(t, "custom", tex.Name)
	assert.Equal(t, metadata.TextureFormatRGBA8, tex.Format)
	assert.Equal(t, uint32(1), tex.MipLevels())
}

func TestTextureLoaderRejects(t *testing.T) {
	dir := t.TempDir()
	tl := &TextureLoader{}

	_, err := tl.Load(filepath.Join(dir, "missing.png"), metadata.ResourceTypeTexture, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not a png"), 0o644))
	_, err = tl.Load(garbage, metadata.ResourceTypeTexture, nil)
	assert.Error(t, err)

	_, err = tl.Load(garbage, metadata.ResourceTypeShader, nil)
	assert.Error(t, err)

	_, err = tl.FromImage("empty", image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestBytesToBytecode(t *testing.T) {
	code, err := BytesToBytecode(spirvWords(SpirvMagic, 0x00010000, 0, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, []uint32{SpirvMagic, 0x00010000, 0, 8, 0}, code)

	_, err = BytesToBytecode(append(spirvWords(SpirvMagic, 0, 0, 0, 0), 0))
	assert.ErrorIs(t, err, ErrInvalidSpirv)

	_, err = BytesToBytecode(spirvWords(SpirvMagic))
	assert.ErrorIs(t, err, ErrInvalidSpirv)

	_, err = BytesToBytecode(spirvWords(0xdeadbeef, 0, 0, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidSpirv)
}

func TestShaderLoader(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "cube.vert.spv")
	require.NoError(t, os.WriteFile(vert, spirvWords(SpirvMagic, 1, 2, 3, 4), 0o644))

	sl := &ShaderLoader{}
	res, err := sl.Load(vert, metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	mod := res.Data.(*metadata.ShaderModule)
	assert.Equal(t, "cube", mod.Name)
	assert.Equal(t, metadata.ShaderStageVertex, mod.Stage)
	assert.Equal(t, "main", mod.EntryPoint)
	assert.Len(t, mod.Code, 5)
	assert.Equal(t, uint64(20), res.DataSize)

	odd := filepath.Join(dir, "cube.geom.spv")
	require.NoError(t, os.WriteFile(odd, spirvWords(SpirvMagic, 1, 2, 3, 4), 0o644))
	_, err = sl.Load(odd, metadata.ResourceTypeShader, nil)
	assert.ErrorIs(t, err, ErrUnknownStage)

	res, err = sl.Load(odd, metadata.ResourceTypeShader, metadata.ShaderStageFragment)
	require.NoError(t, err)
	assert.Equal(t, metadata.ShaderStageFragment, res.Data.(*metadata.ShaderModule).Stage)
}
