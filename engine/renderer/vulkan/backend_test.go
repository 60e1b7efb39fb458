package vulkan

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noLoaderSurface stands in for a machine without a Vulkan loader.
type noLoaderSurface struct{}

func (noLoaderSurface) GetInstanceProcAddress() unsafe.Pointer { return nil }
func (noLoaderSurface) GetRequiredExtensionNames() []string    { return nil }
func (noLoaderSurface) CreateSurface(instance interface{}) (uintptr, error) {
	return 0, ErrNoSurface
}
func (noLoaderSurface) FramebufferSize() (uint32, uint32) { return 1280, 720 }

func TestTeardownAfterFailedInitialize(t *testing.T) {
	vr := New(noLoaderSurface{}, Options{SyncInterval: 1})
	require.ErrorIs(t, vr.Initialize("cubechain-test", 1280, 720), ErrNoSurface)

	assert.NotPanics(t, func() {
		assert.NoError(t, vr.WaitIdle())
	})
	assert.NotPanics(t, func() {
		vr.Resized(640, 480)
	})
	assert.NotPanics(t, func() {
		assert.NoError(t, vr.Shutdown())
	})
}
