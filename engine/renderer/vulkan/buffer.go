package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
)

type VulkanBuffer struct {
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	Size        uint64
	Usage       vk.BufferUsageFlags
	MemoryFlags vk.MemoryPropertyFlags
	// Host pointer while the memory is mapped.
	mapped unsafe.Pointer
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	outBuffer := &VulkanBuffer{
		Size:        size,
		Usage:       usage,
		MemoryFlags: memoryFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &buffer); res != vk.Success {
		return nil, resultError("vkCreateBuffer", res)
	}
	outBuffer.Handle = buffer

	// Gather memory requirements.
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer, &requirements)
	requirements.Deref()

	memoryIndex, ok := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if !ok {
		core.LogError("Unable to create vulkan buffer because the required memory type index was not found.")
		outBuffer.Destroy(context)
		return nil, ErrNoMemoryType
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		outBuffer.Destroy(context)
		return nil, resultError("vkAllocateMemory", res)
	}
	outBuffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer, memory, 0); res != vk.Success {
		outBuffer.Destroy(context)
		return nil, resultError("vkBindBufferMemory", res)
	}
	return outBuffer, nil
}

// Map maps the whole buffer and keeps it mapped until Destroy.
func (vb *VulkanBuffer) Map(context *VulkanContext) ([]byte, error) {
	if vb.mapped == nil {
		var data unsafe.Pointer
		if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(vb.Size), 0, &data); res != vk.Success {
			return nil, resultError("vkMapMemory", res)
		}
		vb.mapped = data
	}
	return unsafe.Slice((*byte)(vb.mapped), vb.Size), nil
}

// LoadData copies data to the start of a host visible buffer.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, data []byte) error {
	dst, err := vb.Map(context)
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// CopyTo copies size bytes into dest with a one-off command buffer and waits
// for the queue.
func (vb *VulkanBuffer) CopyTo(context *VulkanContext, dest *VulkanBuffer, size uint64) error {
	return SingleUse(context, func(cb *VulkanCommandBuffer) error {
		region := vk.BufferCopy{SrcOffset: 0, DstOffset: 0, Size: vk.DeviceSize(size)}
		vk.CmdCopyBuffer(cb.Handle, vb.Handle, dest.Handle, 1, []vk.BufferCopy{region})
		return nil
	})
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
		vb.mapped = nil
	}
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	vb.Size = 0
}

// uploadDeviceLocal creates a device local buffer with usage and fills it
// from a staging buffer.
func uploadDeviceLocal(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := uint64(len(data))
	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)
	if err := staging.LoadData(context, data); err != nil {
		return nil, err
	}

	buffer, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := staging.CopyTo(context, buffer, size); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}
