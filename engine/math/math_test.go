package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// transformHomogeneous transforms the point v by m, keeping w.
func transformHomogeneous(v Vec3, m Mat4) Vec4 {
	return Vec4{
		X: v.X*m.Data[0] + v.Y*m.Data[4] + v.Z*m.Data[8] + m.Data[12],
		Y: v.X*m.Data[1] + v.Y*m.Data[5] + v.Z*m.Data[9] + m.Data[13],
		Z: v.X*m.Data[2] + v.Y*m.Data[6] + v.Z*m.Data[10] + m.Data[14],
		W: v.X*m.Data[3] + v.Y*m.Data[7] + v.Z*m.Data[11] + m.Data[15],
	}
}

const tolerance = 1e-4

// mgl32 stores column-major data for column vectors, which is the same
// memory layout as our row-major data for row vectors.
func fromMgl(m mgl32.Mat4) Mat4 {
	return Mat4{Data: [16]float32(m)}
}

func TestMat4MulMatchesReference(t *testing.T) {
	a := NewMat4EulerZ(0.3).Mul(NewMat4Translation(NewVec3(1, 2, 3)))
	b := NewMat4Scale(NewVec3(2, 0.5, 4)).Mul(NewMat4EulerY(-1.2))

	want := mgl32.Mat4(b.Data).Mul4(mgl32.Mat4(a.Data))
	assert.True(t, a.Mul(b).Compare(fromMgl(want), tolerance))
}

func TestMat4IdentityIsNeutral(t *testing.T) {
	m := NewMat4EulerX(0.7).Mul(NewMat4Translation(NewVec3(4, 5, 6)))
	assert.Equal(t, m, m.Mul(NewMat4Identity()))
	assert.Equal(t, m, NewMat4Identity().Mul(m))
}

func TestEulerRotations(t *testing.T) {
	quarter := DegToRad(90)

	assert.True(t, NewVec3(1, 0, 0).Transform(NewMat4EulerZ(quarter)).Compare(NewVec3(0, 1, 0), tolerance))
	assert.True(t, NewVec3(0, 1, 0).Transform(NewMat4EulerX(quarter)).Compare(NewVec3(0, 0, 1), tolerance))
	assert.True(t, NewVec3(0, 0, 1).Transform(NewMat4EulerY(quarter)).Compare(NewVec3(1, 0, 0), tolerance))

	assert.True(t, NewMat4EulerZ(0.4).Compare(fromMgl(mgl32.HomogRotate3DZ(0.4)), tolerance))
	assert.True(t, NewMat4EulerX(0.4).Compare(fromMgl(mgl32.HomogRotate3DX(0.4)), tolerance))
	assert.True(t, NewMat4EulerY(0.4).Compare(fromMgl(mgl32.HomogRotate3DY(0.4)), tolerance))
}

func TestTransformLocalOrder(t *testing.T) {
	tr := Transform{
		Scale:    NewVec3(0.9, 0.8, 1.1),
		Rotation: NewVec3(0.1, 0.2, DegToRad(30)),
		Position: NewVec3(1, -2, -8),
	}

	want := mgl32.Translate3D(1, -2, -8).
		Mul4(mgl32.HomogRotate3DY(0.2)).
		Mul4(mgl32.HomogRotate3DX(0.1)).
		Mul4(mgl32.HomogRotate3DZ(DegToRad(30))).
		Mul4(mgl32.Scale3D(0.9, 0.8, 1.1))

	assert.True(t, tr.Local().Compare(fromMgl(want), tolerance))
	assert.Equal(t, tr.Position, tr.Local().Translation())
}

func TestTransformTranslate(t *testing.T) {
	tr := NewTransform()
	tr.Translate(NewVec3(0, 1, 0))
	tr.Translate(NewVec3(1, 1, 0))
	assert.Equal(t, NewVec3(1, 2, 0), tr.Position)
	assert.Equal(t, NewVec3One(), tr.Scale)
}

func TestLookAtLH(t *testing.T) {
	view := NewMat4LookAtLH(NewVec3(0, 0, -100), NewVec3Zero(), NewVec3Up())

	assert.True(t, NewVec3(0, 0, -100).Transform(view).Compare(NewVec3Zero(), tolerance))
	assert.True(t, NewVec3Zero().Transform(view).Compare(NewVec3(0, 0, 100), tolerance))
	assert.True(t, NewVec3(10, 0, 0).Transform(view).Compare(NewVec3(10, 0, 100), tolerance))
	assert.True(t, NewVec3(0, 10, 0).Transform(view).Compare(NewVec3(0, 10, 100), tolerance))

	// orbiting a quarter turn puts the eye on -X; +Z in world is then to the left
	side := NewMat4LookAtLH(NewVec3(-100, 0, 0), NewVec3Zero(), NewVec3Up())
	assert.True(t, NewVec3(0, 0, 10).Transform(side).Compare(NewVec3(-10, 0, 100), tolerance))
}

func TestPerspectiveLHDepthRange(t *testing.T) {
	proj := NewMat4PerspectiveLH(DegToRad(45), 1280.0/720.0, 0.1, 1000)

	near := transformHomogeneous(NewVec3(0, 0, 0.1), proj)
	far := transformHomogeneous(NewVec3(0, 0, 1000), proj)
	assert.InDelta(t, 0.0, near.Z/near.W, 1e-5)
	assert.InDelta(t, 1.0, far.Z/far.W, 1e-5)

	// top edge of the frustum at distance d sits at y = d * tan(fov/2)
	d := float32(50)
	top := transformHomogeneous(NewVec3(0, d*ktan(DegToRad(22.5)), d), proj)
	assert.InDelta(t, 1.0, top.Y/top.W, 1e-5)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(256), AlignUp[uint64](64, 256))
	assert.Equal(t, uint64(256), AlignUp[uint64](256, 256))
	assert.Equal(t, uint64(512), AlignUp[uint64](257, 256))
	assert.Equal(t, uint64(0), AlignUp[uint64](0, 256))
	assert.Equal(t, uint32(16), AlignUp[uint32](13, 8))
}

func TestClampAndWrap(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(-1), Clamp[float32](-2, -1, 1))
	assert.Equal(t, float32(0.5), Clamp[float32](0.5, -1, 1))

	assert.InDelta(t, DegToRad(10), WrapAngle(DegToRad(370)), 1e-5)
	assert.InDelta(t, DegToRad(350), WrapAngle(DegToRad(-10)), 1e-5)
}

func TestGeometryGenerateNormals(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(-5, -5, -5)},
		{Position: NewVec3(-5, 5, -5)},
		{Position: NewVec3(5, -5, -5)},
	}
	GeometryGenerateNormals(vertices, []uint16{0, 1, 2})

	for _, v := range vertices {
		assert.True(t, v.Normal.Compare(NewVec3(0, 0, -1), tolerance), "got %+v", v.Normal)
	}

	ext := GeometryExtents(vertices)
	assert.Equal(t, NewVec3(-5, -5, -5), ext.Min)
	assert.Equal(t, NewVec3(5, 5, -5), ext.Max)
}

func TestPackVertices(t *testing.T) {
	out := PackVertices([]Vertex3D{
		{Position: NewVec3(1, 2, 3), Normal: NewVec3(0, 0, -1), Texcoord: Vec2{X: 0.5, Y: 1}},
		{Position: NewVec3(-1, 0, 0)},
	})
	assert.Len(t, out, 2*Vertex3DSize)
	// 1.0f and -1.0f in little-endian
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, out[0:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0xbf}, out[20:24])
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0xbf}, out[Vertex3DSize:Vertex3DSize+4])

	assert.Equal(t, []byte{1, 0, 0x34, 0x12}, PackIndices16([]uint16{1, 0x1234}))
}
