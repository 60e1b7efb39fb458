package renderer_test

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantBufferBindingAlignment(t *testing.T) {
	backend := headless.New(headless.Options{})
	require.NoError(t, backend.Initialize("test", 16, 16))

	for _, payload := range []uint64{1, 64, 256} {
		b, err := renderer.NewConstantBufferBinding(backend, renderer.SlotTransform, payload)
		require.NoError(t, err)
		assert.Equal(t, uint64(256), b.Size(), "payload %d", payload)
		b.Destroy()
	}

	b, err := renderer.NewConstantBufferBinding(backend, renderer.SlotTransform, 300)
	require.NoError(t, err)
	assert.Equal(t, uint64(512), b.Size())
	b.Destroy()
	assert.Equal(t, 0, backend.LiveResources())
}

func TestConstantBufferBindingWritesMappedMemory(t *testing.T) {
	backend := headless.New(headless.Options{})
	require.NoError(t, backend.Initialize("test", 16, 16))

	b, err := renderer.NewConstantBufferBinding(backend, renderer.SlotTransform, renderer.MatrixPayloadSize)
	require.NoError(t, err)
	defer b.Destroy()

	m := math.NewMat4EulerZ(0.5).Mul(math.NewMat4Translation(math.NewVec3(1, 2, 3)))
	b.WriteMatrix(m)
	assert.Equal(t, m, b.Matrix())

	raw := b.Buffer().Mapped()
	// translation x sits at element 12 of the row-major layout
	assert.Equal(t, math32.Float32bits(1), binary.NativeEndian.Uint32(raw[12*4:]))

	// overwriting replaces the previous value completely
	b.WriteMatrix(math.NewMat4Identity())
	assert.Equal(t, math.NewMat4Identity(), b.Matrix())
}

func TestConstantBufferBindingVec4(t *testing.T) {
	backend := headless.New(headless.Options{})
	require.NoError(t, backend.Initialize("test", 16, 16))

	b, err := renderer.NewConstantBufferBinding(backend, renderer.SlotMaterial, renderer.Vec4PayloadSize)
	require.NoError(t, err)
	defer b.Destroy()

	b.WriteVec4(math.NewVec4(1, 0.5, 0.25, 1))
	raw := b.Buffer().Mapped()
	assert.Equal(t, math32.Float32bits(0.5), binary.NativeEndian.Uint32(raw[4:]))
	assert.Equal(t, math32.Float32bits(1), binary.NativeEndian.Uint32(raw[12:]))
}
