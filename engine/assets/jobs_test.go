package assets

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemRejects(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 0)
	require.NoError(t, err)

	var ran, failed atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 32; i++ {
		js.Submit(Job{
			Name: "count",
			Run: func() error {
				ran.Add(1)
				if i%8 == 0 {
					return boom
				}
				return nil
			},
			OnComplete: func(err error) {
				if errors.Is(err, boom) {
					failed.Add(1)
				}
			},
		})
	}
	js.Shutdown()

	assert.Equal(t, int32(32), ran.Load())
	assert.Equal(t, int32(4), failed.Load())
}

func TestLoadTexturesKeepsOrder(t *testing.T) {
	root := writeFixtures(t)
	f, err := os.Create(filepath.Join(root, TextureDir, "texture.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())

	am := newManager(t, root)
	textures, err := am.LoadTextures([]string{"texture", "reimu"})
	require.NoError(t, err)
	require.Len(t, textures, 2)
	assert.Equal(t, "texture", textures[0].Name)
	assert.Equal(t, uint32(4), textures[0].MipLevels())
	assert.Equal(t, "reimu", textures[1].Name)

	_, err = am.LoadTextures([]string{"reimu", "missing"})
	assert.ErrorIs(t, err, ErrAssetNotFound)

	none, err := am.LoadTextures(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
