package metadata

import (
	"github.com/spaghettifunk/cubechain/engine/math"
)

/**
 * @brief Represents the configuration for a geometry.
 */
type GeometryConfig struct {
	/** @brief The Name of the geometry. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of 16-bit Indices, three per triangle. */
	Indices []uint16

	Extents math.Extents3D
}

/** @brief The number of indices to draw. */
func (g *GeometryConfig) IndexCount() uint32 {
	return uint32(len(g.Indices))
}
