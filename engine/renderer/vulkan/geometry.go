package vulkan

import (
	"errors"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

var ErrEmptyGeometry = errors.New("geometry has no vertices or indices")

/**
 * @brief Device local vertex and index buffers for one geometry.
 */
type VulkanGeometry struct {
	context *VulkanContext

	Name string
	/** @brief The vertex count. */
	VertexCount uint32
	/** @brief The index count. */
	indexCount uint32

	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
}

func GeometryCreate(context *VulkanContext, config *metadata.GeometryConfig) (*VulkanGeometry, error) {
	if len(config.Vertices) == 0 || len(config.Indices) == 0 {
		return nil, ErrEmptyGeometry
	}

	vertices, err := uploadDeviceLocal(context, math.PackVertices(config.Vertices),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		core.LogError("failed to upload vertices for geometry '%s': %s", config.Name, err)
		return nil, err
	}
	indices, err := uploadDeviceLocal(context, math.PackIndices16(config.Indices),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		core.LogError("failed to upload indices for geometry '%s': %s", config.Name, err)
		vertices.Destroy(context)
		return nil, err
	}

	return &VulkanGeometry{
		context:      context,
		Name:         config.Name,
		VertexCount:  uint32(len(config.Vertices)),
		indexCount:   config.IndexCount(),
		VertexBuffer: vertices,
		IndexBuffer:  indices,
	}, nil
}

func (g *VulkanGeometry) IndexCount() uint32 {
	return g.indexCount
}

func (g *VulkanGeometry) Destroy() {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Destroy(g.context)
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Destroy(g.context)
		g.IndexBuffer = nil
	}
}
