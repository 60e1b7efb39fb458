package math

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// Vertex3DSize is the packed size of a Vertex3D: position, normal, texcoord.
const Vertex3DSize = (3 + 3 + 2) * 4

// GeometryGenerateNormals writes a face normal into the three vertices of
// every triangle. Vertices shared by several triangles keep the normal of the
// last triangle that references them.
func GeometryGenerateNormals[I constraints.Unsigned](vertices []Vertex3D, indices []I) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		normal := edge1.Cross(edge2).Normalize()

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryExtents returns the axis-aligned bounds of the given vertices.
func GeometryExtents(vertices []Vertex3D) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	ext := Extents3D{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		ext.Min = Vec3{min(ext.Min.X, v.Position.X), min(ext.Min.Y, v.Position.Y), min(ext.Min.Z, v.Position.Z)}
		ext.Max = Vec3{max(ext.Max.X, v.Position.X), max(ext.Max.Y, v.Position.Y), max(ext.Max.Z, v.Position.Z)}
	}
	return ext
}

// PackVertices lays vertices out back to back in little-endian floats, the
// layout the vertex shader reads.
func PackVertices(vertices []Vertex3D) []byte {
	out := make([]byte, len(vertices)*Vertex3DSize)
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(out[off:], math32.Float32bits(f))
		off += 4
	}
	for _, v := range vertices {
		put(v.Position.X)
		put(v.Position.Y)
		put(v.Position.Z)
		put(v.Normal.X)
		put(v.Normal.Y)
		put(v.Normal.Z)
		put(v.Texcoord.X)
		put(v.Texcoord.Y)
	}
	return out
}

// PackIndices16 lays out 16-bit indices in little-endian order.
func PackIndices16(indices []uint16) []byte {
	out := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(out[i*2:], idx)
	}
	return out
}
