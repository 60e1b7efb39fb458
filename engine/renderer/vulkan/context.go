package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	DescriptorPool *VulkanDescriptorPool

	// Signaled by the acquire, waited on by the frame's submission.
	ImageAvailableSemaphore vk.Semaphore
	// Signaled by the frame's submission, waited on by the present.
	QueueCompleteSemaphore vk.Semaphore

	ImageIndex uint32
	// Set between a successful acquire and the submission that consumes it.
	AcquirePending bool
	// Set between a submission that signals QueueCompleteSemaphore and the
	// present that consumes it.
	PresentPending bool

	RecreatingSwapchain bool
	// Set when present reports the swapchain no longer matches the surface.
	// The next acquire rebuilds it.
	SwapchainOutOfDate bool

	Locks *VulkanLockPool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, bool) {
	memoryProperties := vc.Device.Memory
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return i, true
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return 0, false
}
