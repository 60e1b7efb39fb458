package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/renderer"
)

// VulkanConstantBuffer is a host visible uniform buffer mapped for its
// whole life, with a descriptor set that points at it.
type VulkanConstantBuffer struct {
	context *VulkanContext
	slot    renderer.BindingSlot
	buffer  *VulkanBuffer
	mapped  []byte
	Set     vk.DescriptorSet
}

func ConstantBufferCreate(context *VulkanContext, slot renderer.BindingSlot, size uint64) (*VulkanConstantBuffer, error) {
	buffer, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	mapped, err := buffer.Map(context)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	clear(mapped)

	set, err := context.DescriptorPool.Allocate(context, uint32(slot))
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	WriteBuffer(context, set, buffer)

	return &VulkanConstantBuffer{
		context: context,
		slot:    slot,
		buffer:  buffer,
		mapped:  mapped,
		Set:     set,
	}, nil
}

func (cb *VulkanConstantBuffer) Mapped() []byte {
	return cb.mapped
}

func (cb *VulkanConstantBuffer) Size() uint64 {
	return uint64(len(cb.mapped))
}

func (cb *VulkanConstantBuffer) Destroy() {
	if cb.buffer == nil {
		return
	}
	cb.context.DescriptorPool.Free(cb.context, cb.Set)
	cb.Set = vk.NullDescriptorSet
	cb.buffer.Destroy(cb.context)
	cb.buffer = nil
	cb.mapped = nil
}
