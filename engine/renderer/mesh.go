package renderer

import (
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

const (
	CubeVertexCount = 24
	CubeIndexCount  = 36
)

// NewCubeGeometry builds a cube centered on the origin: four vertices per
// face so every face gets its own normals and texture coordinates.
func NewCubeGeometry(halfExtent float32) *metadata.GeometryConfig {
	e := halfExtent
	v := func(x, y, z, u, w float32) math.Vertex3D {
		return math.Vertex3D{Position: math.NewVec3(x, y, z), Texcoord: math.NewVec2(u, w)}
	}
	vertices := []math.Vertex3D{
		// front
		v(-e, -e, -e, 0, 1), v(-e, e, -e, 0, 0), v(e, -e, -e, 1, 1), v(e, e, -e, 1, 0),
		// back
		v(-e, e, e, 0, 0), v(-e, -e, e, 0, 1), v(e, e, e, 1, 0), v(e, -e, e, 1, 1),
		// left
		v(-e, -e, -e, 0, 1), v(-e, -e, e, 0, 0), v(-e, e, -e, 1, 1), v(-e, e, e, 1, 0),
		// right
		v(e, -e, e, 0, 0), v(e, -e, -e, 0, 1), v(e, e, e, 1, 0), v(e, e, -e, 1, 1),
		// bottom
		v(-e, -e, -e, 0, 1), v(e, -e, -e, 0, 0), v(-e, -e, e, 1, 1), v(e, -e, e, 1, 0),
		// top
		v(e, e, -e, 0, 0), v(-e, e, -e, 0, 1), v(e, e, e, 1, 0), v(-e, e, e, 1, 1),
	}

	indices := make([]uint16, 0, CubeIndexCount)
	for face := uint16(0); face < 6; face++ {
		b := face * 4
		indices = append(indices, b, b+1, b+2, b+2, b+1, b+3)
	}

	math.GeometryGenerateNormals(vertices, indices)

	return &metadata.GeometryConfig{
		Name:     "cube",
		Vertices: vertices,
		Indices:  indices,
		Extents:  math.GeometryExtents(vertices),
	}
}
