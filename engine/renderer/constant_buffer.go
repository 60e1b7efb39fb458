package renderer

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
)

const (
	// ConstantBufferAlignment is the placement granularity of constant
	// buffers on the GPU.
	ConstantBufferAlignment uint64 = 256

	MatrixPayloadSize uint64 = 16 * 4
	Vec4PayloadSize   uint64 = 4 * 4
)

// ConstantBufferBinding owns one persistently mapped constant buffer. It is
// written only by the frame loop, between frames.
type ConstantBufferBinding struct {
	slot   BindingSlot
	buffer ConstantBuffer
}

// NewConstantBufferBinding allocates a buffer big enough for payload bytes,
// rounded up to ConstantBufferAlignment.
func NewConstantBufferBinding(backend RendererBackend, slot BindingSlot, payload uint64) (*ConstantBufferBinding, error) {
	size := math.AlignUp(payload, ConstantBufferAlignment)
	buffer, err := backend.CreateConstantBuffer(slot, size)
	if err != nil {
		core.LogError("failed to create %s constant buffer of %d bytes: %s", slot, size, err)
		return nil, err
	}
	if uint64(len(buffer.Mapped())) < payload {
		buffer.Destroy()
		return nil, ErrBufferNotMapped
	}
	return &ConstantBufferBinding{slot: slot, buffer: buffer}, nil
}

// WriteMatrix stores m at the start of the buffer, row-major.
func (b *ConstantBufferBinding) WriteMatrix(m math.Mat4) {
	dst := b.buffer.Mapped()
	for i, f := range m.Data {
		binary.NativeEndian.PutUint32(dst[i*4:], math32.Float32bits(f))
	}
}

// Matrix reads back the matrix last written with WriteMatrix.
func (b *ConstantBufferBinding) Matrix() math.Mat4 {
	src := b.buffer.Mapped()
	m := math.Mat4{}
	for i := range m.Data {
		m.Data[i] = math32.Float32frombits(binary.NativeEndian.Uint32(src[i*4:]))
	}
	return m
}

// WriteVec4 stores v at the start of the buffer.
func (b *ConstantBufferBinding) WriteVec4(v math.Vec4) {
	dst := b.buffer.Mapped()
	for i, f := range [4]float32{v.X, v.Y, v.Z, v.W} {
		binary.NativeEndian.PutUint32(dst[i*4:], math32.Float32bits(f))
	}
}

func (b *ConstantBufferBinding) Slot() BindingSlot {
	return b.slot
}

func (b *ConstantBufferBinding) Buffer() ConstantBuffer {
	return b.buffer
}

func (b *ConstantBufferBinding) Size() uint64 {
	return b.buffer.Size()
}

func (b *ConstantBufferBinding) Destroy() {
	if b.buffer != nil {
		b.buffer.Destroy()
		b.buffer = nil
	}
}
